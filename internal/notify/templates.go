// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package notify

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"
)

var (
	ackMsgTemplate     = `Processing command "{{ .Text }}"...`
	usageMsgTemplate   = `Usage:{{ "\n" }}{{ .Lines | join "\n" }}`
	successMsgTemplate = `{{ .Result }}, thanks <@{{ .UserID }}>!`
	failureMsgTemplate = `Error: {{ .Err | trimPrefix "Error: " }}`
)

// Renderer renders the texts users see.
type Renderer struct {
	ack     *template.Template
	usage   *template.Template
	success *template.Template
	failure *template.Template
}

// NewRenderer parses the message templates.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{}

	for _, t := range []struct {
		name string
		text string
		dst  **template.Template
	}{
		{"ack", ackMsgTemplate, &r.ack},
		{"usage", usageMsgTemplate, &r.usage},
		{"success", successMsgTemplate, &r.success},
		{"failure", failureMsgTemplate, &r.failure},
	} {
		tmpl, err := template.New(t.name).Funcs(sprig.TxtFuncMap()).Parse(t.text)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing %s template", t.name)
		}
		*t.dst = tmpl
	}

	return r, nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	buffer := &bytes.Buffer{}
	err := tmpl.Execute(buffer, data)
	return buffer.String(), errors.Wrapf(err, "error rendering %s message", tmpl.Name())
}

// Ack is the immediate reply to an accepted command.
func (r *Renderer) Ack(text string) (Message, error) {
	s, err := render(r.ack, struct{ Text string }{text})
	return Message{Text: s}, err
}

// Usage lists the commands.
func (r *Renderer) Usage(lines []string) (Message, error) {
	s, err := render(r.usage, struct{ Lines []string }{lines})
	return Message{Text: s}, err
}

// Success thanks userID, in public, for result.
func (r *Renderer) Success(result, userID string) (Message, error) {
	s, err := render(r.success, struct{ Result, UserID string }{result, userID})
	return Message{Text: s, Public: true}, err
}

// Failure describes err privately.
func (r *Renderer) Failure(err error) (Message, error) {
	s, rerr := render(r.failure, struct{ Err string }{err.Error()})
	return Message{Text: s}, rerr
}
