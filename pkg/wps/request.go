package wps

import (
	"encoding/xml"
	"strings"

	"github.com/kass/go-ogc-client/pkg/ows"
)

// InputValue is a value assignable to a process input in an Execute request.
type InputValue interface {
	appendInputXML(b *strings.Builder)
}

// LiteralValue is a plain string input, carried as wps:LiteralData.
type LiteralValue string

func (v LiteralValue) appendInputXML(b *strings.Builder) {
	b.WriteString(`<wps:Data><wps:LiteralData>`)
	b.WriteString(escapeText(string(v)))
	b.WriteString(`</wps:LiteralData></wps:Data>`)
}

// ExecuteInput pairs a process input identifier with its value.
type ExecuteInput struct {
	Identifier string
	Value      InputValue
}

func escapeText(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// BuildExecuteRequest renders the wps:Execute document for a process run.
// output, when non-empty, requests that the named output be stored by the
// server and returned as a reference in an asynchronous status document.
func BuildExecuteRequest(identifier string, inputs []ExecuteInput, output string) string {
	var b strings.Builder
	b.WriteString(`<wps:Execute service="WPS" version="` + DefaultVersion + `"`)
	b.WriteString(` xmlns:wps="` + ows.NamespaceWPS + `"`)
	b.WriteString(` xmlns:ows="` + ows.NamespaceOWS + `"`)
	b.WriteString(` xmlns:xlink="` + ows.NamespaceXLink + `"`)
	b.WriteString(` xmlns:xsi="` + ows.NamespaceXSI + `"`)
	b.WriteString(` xsi:schemaLocation="` + ows.NamespaceWPS + ` ` + ows.SchemaLocationWPSExecute + `">`)

	b.WriteString(`<ows:Identifier>` + escapeText(identifier) + `</ows:Identifier>`)

	b.WriteString(`<wps:DataInputs>`)
	for _, input := range inputs {
		b.WriteString(`<wps:Input>`)
		b.WriteString(`<ows:Identifier>` + escapeText(input.Identifier) + `</ows:Identifier>`)
		input.Value.appendInputXML(&b)
		b.WriteString(`</wps:Input>`)
	}
	b.WriteString(`</wps:DataInputs>`)

	if output != "" {
		b.WriteString(`<wps:ResponseForm>`)
		b.WriteString(`<wps:ResponseDocument storeExecuteResponse="true" status="true">`)
		b.WriteString(`<wps:Output asReference="true">`)
		b.WriteString(`<ows:Identifier>` + escapeText(output) + `</ows:Identifier>`)
		b.WriteString(`</wps:Output>`)
		b.WriteString(`</wps:ResponseDocument>`)
		b.WriteString(`</wps:ResponseForm>`)
	}

	b.WriteString(`</wps:Execute>`)
	return b.String()
}
