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
	"strings"
	"testing"
	"time"
)

// crlf converts test fixtures written with plain newlines into proper
// RFC 822 line endings.
func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

// TestParseMessage_MultipartWithAttachment verifies header decoding,
// inline part collection in MIME order, and the attachment flag.
func TestParseMessage_MultipartWithAttachment(t *testing.T) {
	raw := crlf(`From: Metrogas <contacto@metrogas.cl>
To: user@example.com
Subject: Boleta Metrogas Nro. 0000000061778648
Date: Mon, 02 Feb 2026 10:00:00 -0300
Message-ID: <feb-bill@metrogas.cl>
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: text/plain; charset=utf-8

Total a pagar: 24580
--outer
Content-Type: text/html; charset=utf-8

<p>Total a pagar: 24580</p>
--outer
Content-Type: application/pdf; name="boleta.pdf"
Content-Disposition: attachment; filename="boleta.pdf"

%PDF-1.4 fake
--outer--
`)

	email, err := parseMessage(raw)
	if err != nil {
		t.Fatalf("parseMessage failed: %v", err)
	}

	if email.FromAddress != "contacto@metrogas.cl" {
		t.Errorf("from address = %q", email.FromAddress)
	}
	if email.FromName != "Metrogas" {
		t.Errorf("from name = %q", email.FromName)
	}
	if email.Subject != "Boleta Metrogas Nro. 0000000061778648" {
		t.Errorf("subject = %q", email.Subject)
	}
	if email.MessageID != "feb-bill@metrogas.cl" {
		t.Errorf("message id = %q", email.MessageID)
	}
	wantDate := time.Date(2026, 2, 2, 10, 0, 0, 0, time.FixedZone("", -3*3600))
	if !email.Date.Equal(wantDate) {
		t.Errorf("date = %v, want %v", email.Date, wantDate)
	}

	if len(email.Parts) != 2 {
		t.Fatalf("got %d inline parts, want 2", len(email.Parts))
	}
	if email.Parts[0].ContentType != "text/plain" {
		t.Errorf("first part type = %q, want text/plain", email.Parts[0].ContentType)
	}
	if !strings.Contains(email.Parts[0].Content, "Total a pagar: 24580") {
		t.Errorf("first part content = %q", email.Parts[0].Content)
	}
	if email.Parts[1].ContentType != "text/html" {
		t.Errorf("second part type = %q, want text/html", email.Parts[1].ContentType)
	}

	if !email.HasAttachments {
		t.Error("attachment flag not set")
	}
}

// TestParseMessage_SimpleText verifies a non-multipart message parses
// as a single inline part with no attachments.
func TestParseMessage_SimpleText(t *testing.T) {
	raw := crlf(`From: boleta@enel.cl
Subject: Llegó tu boleta Enel
Date: Mon, 05 Jan 2026 09:00:00 +0000
Content-Type: text/plain; charset=utf-8

Tu boleta N° 12345678 del 05/01/2026 está disponible.
`)

	email, err := parseMessage(raw)
	if err != nil {
		t.Fatalf("parseMessage failed: %v", err)
	}

	if email.HasAttachments {
		t.Error("attachment flag set on a plain message")
	}
	if len(email.Parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(email.Parts))
	}
	if email.Parts[0].ContentType != "text/plain" {
		t.Errorf("part type = %q", email.Parts[0].ContentType)
	}
	if !strings.Contains(email.Parts[0].Content, "12345678") {
		t.Errorf("content = %q", email.Parts[0].Content)
	}
}

// TestParseMessage_EncodedSubject verifies RFC 2047 encoded-word
// subjects decode, as Chilean providers send them.
func TestParseMessage_EncodedSubject(t *testing.T) {
	raw := crlf(`From: contacto@aguasandinas.cl
Subject: =?utf-8?Q?Boleta_Electr=C3=B3nica_N=C2=B0_777888?=
Date: Mon, 05 Jan 2026 09:00:00 +0000
Content-Type: text/plain; charset=utf-8

Su boleta mensual.
`)

	email, err := parseMessage(raw)
	if err != nil {
		t.Fatalf("parseMessage failed: %v", err)
	}

	if email.Subject != "Boleta Electrónica N° 777888" {
		t.Errorf("subject = %q, want decoded encoded-words", email.Subject)
	}
}
