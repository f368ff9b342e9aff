package wps

import (
	"encoding/xml"
	"fmt"
)

// LiteralMeta describes the literal data constraints of a process input.
type LiteralMeta struct {
	DataType      string
	AllowedValues []string
	DefaultValue  string
}

// ComplexFormat describes one supported format of a complex input or output.
type ComplexFormat struct {
	MimeType string
	Encoding string
	Schema   string
}

// Input is the metadata of one process input.
type Input struct {
	Identifier string
	Title      string
	Abstract   string
	MinOccurs  int
	MaxOccurs  int

	Literal          *LiteralMeta
	ComplexDefault   *ComplexFormat
	ComplexSupported []ComplexFormat
}

// OutputMeta is the metadata of one process output.
type OutputMeta struct {
	Identifier string
	Title      string
	Abstract   string

	Literal          *LiteralMeta
	ComplexDefault   *ComplexFormat
	ComplexSupported []ComplexFormat
}

// Process is a WPS process description.
type Process struct {
	Identifier      string
	Title           string
	Abstract        string
	Version         string
	StatusSupported bool
	StoreSupported  bool

	Inputs  []Input
	Outputs []OutputMeta
}

type formatXML struct {
	MimeType string `xml:"MimeType"`
	Encoding string `xml:"Encoding"`
	Schema   string `xml:"Schema"`
}

type literalXML struct {
	DataType struct {
		Reference string `xml:"reference,attr"`
	} `xml:"DataType"`
	AllowedValues []string `xml:"AllowedValues>Value"`
	DefaultValue  string   `xml:"DefaultValue"`
}

type complexXML struct {
	Default   formatXML   `xml:"Default>Format"`
	Supported []formatXML `xml:"Supported>Format"`
}

type inputXML struct {
	MinOccurs  int         `xml:"minOccurs,attr"`
	MaxOccurs  int         `xml:"maxOccurs,attr"`
	Identifier string      `xml:"Identifier"`
	Title      string      `xml:"Title"`
	Abstract   string      `xml:"Abstract"`
	Literal    *literalXML `xml:"LiteralData"`
	Complex    *complexXML `xml:"ComplexData"`
}

type outputXMLMeta struct {
	Identifier string      `xml:"Identifier"`
	Title      string      `xml:"Title"`
	Abstract   string      `xml:"Abstract"`
	Literal    *literalXML `xml:"LiteralOutput"`
	Complex    *complexXML `xml:"ComplexOutput"`
}

type processDescriptionXML struct {
	Version         string          `xml:"processVersion,attr"`
	StatusSupported bool            `xml:"statusSupported,attr"`
	StoreSupported  bool            `xml:"storeSupported,attr"`
	Identifier      string          `xml:"Identifier"`
	Title           string          `xml:"Title"`
	Abstract        string          `xml:"Abstract"`
	Inputs          []inputXML      `xml:"DataInputs>Input"`
	Outputs         []outputXMLMeta `xml:"ProcessOutputs>Output"`
}

type processDescriptionsXML struct {
	XMLName      xml.Name
	Descriptions []processDescriptionXML `xml:"ProcessDescription"`
}

// ParseProcessDescription decodes a DescribeProcess response into the first
// (and normally only) process it describes.
func ParseProcessDescription(body []byte) (*Process, error) {
	var doc processDescriptionsXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("wps: malformed process description: %w", err)
	}
	if len(doc.Descriptions) == 0 {
		return nil, fmt.Errorf("wps: no ProcessDescription in %q document", doc.XMLName.Local)
	}

	desc := doc.Descriptions[0]
	process := &Process{
		Identifier:      desc.Identifier,
		Title:           desc.Title,
		Abstract:        desc.Abstract,
		Version:         desc.Version,
		StatusSupported: desc.StatusSupported,
		StoreSupported:  desc.StoreSupported,
	}

	for _, in := range desc.Inputs {
		input := Input{
			Identifier: in.Identifier,
			Title:      in.Title,
			Abstract:   in.Abstract,
			MinOccurs:  in.MinOccurs,
			MaxOccurs:  in.MaxOccurs,
		}
		input.Literal = literalMeta(in.Literal)
		input.ComplexDefault, input.ComplexSupported = complexMeta(in.Complex)
		process.Inputs = append(process.Inputs, input)
	}

	for _, out := range desc.Outputs {
		output := OutputMeta{
			Identifier: out.Identifier,
			Title:      out.Title,
			Abstract:   out.Abstract,
		}
		output.Literal = literalMeta(out.Literal)
		output.ComplexDefault, output.ComplexSupported = complexMeta(out.Complex)
		process.Outputs = append(process.Outputs, output)
	}
	return process, nil
}

func literalMeta(lit *literalXML) *LiteralMeta {
	if lit == nil {
		return nil
	}
	meta := &LiteralMeta{
		DataType:      localPart(lit.DataType.Reference),
		AllowedValues: lit.AllowedValues,
		DefaultValue:  lit.DefaultValue,
	}
	return meta
}

func complexMeta(cpx *complexXML) (*ComplexFormat, []ComplexFormat) {
	if cpx == nil {
		return nil, nil
	}
	def := &ComplexFormat{
		MimeType: cpx.Default.MimeType,
		Encoding: cpx.Default.Encoding,
		Schema:   cpx.Default.Schema,
	}
	supported := make([]ComplexFormat, 0, len(cpx.Supported))
	for _, f := range cpx.Supported {
		supported = append(supported, ComplexFormat{MimeType: f.MimeType, Encoding: f.Encoding, Schema: f.Schema})
	}
	return def, supported
}

// localPart strips a "xs:string" style prefix from a data type reference.
func localPart(ref string) string {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == ':' {
			return ref[i+1:]
		}
	}
	return ref
}
