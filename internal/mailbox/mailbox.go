// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mailbox provides the IMAP client that fetches full messages
// from the monitored inbox.
package mailbox

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-sasl"
	"golang.org/x/oauth2"

	// Register charset decoders (windows-1252, iso-8859-*, etc.) so
	// provider emails in legacy encodings still parse.
	_ "github.com/emersion/go-message/charset"

	"github.com/billscout/monitor/internal/models"
)

// Credentials selects the IMAP authentication mechanism: plain LOGIN
// with a password, or OAUTHBEARER with a token source.
type Credentials struct {
	Address     string
	Password    string
	TokenSource oauth2.TokenSource
}

// Client wraps an authenticated IMAP connection. Not safe for
// concurrent use; the coordinator dials a fresh client per refresh.
type Client struct {
	c *imapclient.Client
}

// Dial connects to the IMAP server over TLS and authenticates.
func Dial(server string, port int, creds Credentials) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", server, port)

	c, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	if creds.TokenSource != nil {
		tok, err := creds.TokenSource.Token()
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("obtain OAuth token: %w", err)
		}
		saslClient := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
			Username: creds.Address,
			Token:    tok.AccessToken,
		})
		if err := c.Authenticate(saslClient); err != nil {
			c.Close()
			return nil, fmt.Errorf("OAUTHBEARER authentication failed: %w", err)
		}
	} else {
		if err := c.Login(creds.Address, creds.Password).Wait(); err != nil {
			c.Close()
			return nil, fmt.Errorf("login failed: %w", err)
		}
	}

	return &Client{c: c}, nil
}

// FetchRecent retrieves up to limit of the newest messages in INBOX,
// fully parsed. The mailbox is opened read-only and message flags are
// never touched. Individually unparseable messages are skipped with a
// debug log rather than failing the whole fetch.
func (cl *Client) FetchRecent(limit int) ([]models.Email, error) {
	sel, err := cl.c.Select("INBOX", &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		return nil, fmt.Errorf("select INBOX: %w", err)
	}
	if sel.NumMessages == 0 {
		return nil, nil
	}

	from := uint32(1)
	to := sel.NumMessages
	if limit > 0 && to > uint32(limit) {
		from = to - uint32(limit) + 1
	}

	var seqSet imap.SeqSet
	seqSet.AddRange(from, to)

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := cl.c.Fetch(seqSet, &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})

	var emails []models.Email
	for {
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		for {
			item := msgData.Next()
			if item == nil {
				break
			}
			section, ok := item.(imapclient.FetchItemDataBodySection)
			if !ok {
				continue
			}
			raw, err := io.ReadAll(section.Literal)
			if err != nil || len(raw) == 0 {
				continue
			}
			email, err := parseMessage(raw)
			if err != nil {
				slog.Debug("skipping unparseable message", "error", err)
				continue
			}
			emails = append(emails, email)
		}
	}

	if err := fetchCmd.Close(); err != nil {
		return emails, fmt.Errorf("fetch INBOX messages: %w", err)
	}
	return emails, nil
}

// Close logs out and drops the connection.
func (cl *Client) Close() error {
	if err := cl.c.Logout().Wait(); err != nil {
		return cl.c.Close()
	}
	return nil
}
