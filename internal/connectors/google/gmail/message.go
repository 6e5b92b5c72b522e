package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
)

// Message is an outgoing mail.
type Message struct {
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	ReplyTo string
	Subject string

	// Text and HTML are alternative bodies; at least one should be set.
	Text string
	HTML string

	Attachments []Attachment
}

// Attachment is a file attached to a Message.
type Attachment struct {
	Filename string
	// ContentType is sniffed from Data when empty.
	ContentType string
	Data        []byte
}

// BuildMessage renders m as an RFC 5322 message encoded with base64url, the
// form the Gmail API expects in Message.Raw.
func BuildMessage(m Message) (string, error) {
	raw, err := compose(m)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// addressHeader parses every value as an RFC 5322 address list and renders
// the addresses joined by commas. Empty values are skipped.
func addressHeader(key string, values []string) (string, error) {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if strings.ContainsAny(v, "\r\n") {
			return "", fmt.Errorf("%s %q contains a line break: %w", key, v, domain.ErrInvalidInput)
		}
		list, err := mail.ParseAddressList(v)
		if err != nil {
			return "", fmt.Errorf("%s %q: %v: %w", key, v, err, domain.ErrInvalidInput)
		}
		for _, a := range list {
			if a.Name == "" {
				out = append(out, a.Address)
				continue
			}
			out = append(out, a.String())
		}
	}
	return strings.Join(out, ", "), nil
}

func compose(m Message) ([]byte, error) {
	if len(m.To)+len(m.Cc)+len(m.Bcc) == 0 {
		return nil, fmt.Errorf("message has no recipients: %w", domain.ErrInvalidInput)
	}

	addrs := make(map[string]string, 5)
	for _, f := range []struct {
		key    string
		values []string
	}{
		{"From", []string{m.From}},
		{"To", m.To},
		{"Cc", m.Cc},
		{"Bcc", m.Bcc},
		{"Reply-To", []string{m.ReplyTo}},
	} {
		v, err := addressHeader(f.key, f.values)
		if err != nil {
			return nil, err
		}
		addrs[f.key] = v
	}

	var buf bytes.Buffer
	header := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
		}
	}
	header("From", addrs["From"])
	header("To", addrs["To"])
	header("Cc", addrs["Cc"])
	header("Bcc", addrs["Bcc"])
	header("Reply-To", addrs["Reply-To"])
	header("Subject", mime.BEncoding.Encode("UTF-8", m.Subject))
	header("MIME-Version", "1.0")

	body, bodyType, err := bodyPart(m)
	if err != nil {
		return nil, err
	}

	if len(m.Attachments) == 0 {
		for k, vs := range bodyType {
			header(k, vs[0])
		}
		buf.WriteString("\r\n")
		buf.Write(body)
		return buf.Bytes(), nil
	}

	var mixed bytes.Buffer
	mw := multipart.NewWriter(&mixed)
	pw, err := mw.CreatePart(bodyType)
	if err != nil {
		return nil, err
	}
	if _, err := pw.Write(body); err != nil {
		return nil, err
	}
	for _, a := range m.Attachments {
		if err := writeAttachment(mw, a); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	header("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	buf.WriteString("\r\n")
	buf.Write(mixed.Bytes())
	return buf.Bytes(), nil
}

// bodyPart returns the encoded body and the headers describing it.
func bodyPart(m Message) ([]byte, textproto.MIMEHeader, error) {
	if m.Text != "" && m.HTML != "" {
		var alt bytes.Buffer
		aw := multipart.NewWriter(&alt)
		for _, p := range []struct{ typ, content string }{{"text/plain", m.Text}, {"text/html", m.HTML}} {
			body, h, err := textPart(p.typ, p.content)
			if err != nil {
				return nil, nil, err
			}
			w, err := aw.CreatePart(h)
			if err != nil {
				return nil, nil, err
			}
			if _, err := w.Write(body); err != nil {
				return nil, nil, err
			}
		}
		if err := aw.Close(); err != nil {
			return nil, nil, err
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", "multipart/alternative; boundary="+aw.Boundary())
		return alt.Bytes(), h, nil
	}
	if m.HTML != "" {
		return textPart("text/html", m.HTML)
	}
	return textPart("text/plain", m.Text)
}

func textPart(typ, content string) ([]byte, textproto.MIMEHeader, error) {
	var b bytes.Buffer
	qw := quotedprintable.NewWriter(&b)
	if _, err := io.WriteString(qw, content); err != nil {
		return nil, nil, err
	}
	if err := qw.Close(); err != nil {
		return nil, nil, err
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", typ+"; charset=UTF-8")
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	return b.Bytes(), h, nil
}

func writeAttachment(mw *multipart.Writer, a Attachment) error {
	ct := a.ContentType
	if ct == "" {
		ct = mimetype.Detect(a.Data).String()
	}
	name := mime.BEncoding.Encode("UTF-8", filepath.Base(a.Filename))

	h := textproto.MIMEHeader{}
	h.Set("Content-Type", fmt.Sprintf("%s; name=%q", ct, name))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	h.Set("Content-Transfer-Encoding", "base64")
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	enc := base64.StdEncoding.EncodeToString(a.Data)
	for len(enc) > 76 {
		if _, err := io.WriteString(w, enc[:76]+"\r\n"); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err = io.WriteString(w, enc+"\r\n")
	return err
}
