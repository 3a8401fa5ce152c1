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

package mailbox

import (
	"bytes"
	"fmt"
	"io"
	"mime"

	"github.com/emersion/go-message/mail"

	"github.com/billscout/monitor/internal/models"
)

// parseMessage converts a raw RFC 822 message into a models.Email with
// decoded headers and the MIME body parts in their original order.
// Attachments are flagged but their content is never read: bills
// arrive as PDFs and PDF parsing is out of scope.
func parseMessage(raw []byte) (models.Email, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return models.Email{}, fmt.Errorf("create mail reader: %w", err)
	}

	var email models.Email

	email.MessageID, _ = mr.Header.MessageID()
	if date, err := mr.Header.Date(); err == nil {
		email.Date = date
	}
	if subject, err := mr.Header.Subject(); err == nil {
		email.Subject = subject
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		email.FromAddress = from[0].Address
		email.FromName = from[0].Name
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed trailing part should not discard the parts
			// already collected.
			break
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, err := h.ContentType()
			if err != nil {
				ct, _, _ = mime.ParseMediaType(h.Get("Content-Type"))
			}
			content, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			email.Parts = append(email.Parts, models.BodyPart{
				ContentType: ct,
				Content:     string(content),
			})
		case *mail.AttachmentHeader:
			email.HasAttachments = true
		}
	}

	return email, nil
}
