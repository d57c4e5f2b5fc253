package process

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// OutputFormat is the format the results are written in.
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// OutputFormats returns the supported output formats.
func OutputFormats() []string {
	return []string{string(OutputFormatTable), string(OutputFormatJSON), string(OutputFormatYAML)}
}

// Table is the tabular representation of a result.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteOutput writes the result in the required format, the table format uses t instead of v.
func WriteOutput(out io.Writer, format OutputFormat, v any, t Table) error {
	switch format {
	case OutputFormatJSON:
		data, err := json.MarshalIndent(v, "", "\t")
		if err != nil {
			return fmt.Errorf("the result could not be marshaled in JSON: %w", err)
		}
		data = append(data, '\n')

		_, err = out.Write(data)
		if err != nil {
			return fmt.Errorf("result could not be written in the output: %w", err)
		}

	case OutputFormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("the result could not be marshaled in YAML: %w", err)
		}
		err = enc.Close()
		if err != nil {
			return fmt.Errorf("result could not be written in the output: %w", err)
		}

	case OutputFormatTable, "":
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
		for _, row := range t.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		err := tw.Flush()
		if err != nil {
			return fmt.Errorf("result could not be written in the output: %w", err)
		}

	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	return nil
}
