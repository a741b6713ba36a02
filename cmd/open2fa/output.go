package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	open2fa "github.com/cc-d/open2fa"
	"github.com/cc-d/open2fa/pkg/store"
)

var (
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
	codeFmt = color.New(color.FgCyan, color.Bold)
)

// newTable returns a borderless, left-aligned table in the style of
// `kubectl get`.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetColumnSeparator("")
	t.SetCenterSeparator("")
	t.SetRowSeparator("")
	t.SetTablePadding("    ")
	t.SetNoWhiteSpace(true)
	return t
}

func displayName(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

func displaySecret(secret string, reveal bool) string {
	if reveal {
		return secret
	}
	return store.Truncate(secret)
}

// renderSecrets prints a Name/Secret table.
func renderSecrets(w io.Writer, list []store.Secret, reveal bool) {
	t := newTable(w, "Name", "Secret")
	for _, s := range list {
		t.Append([]string{displayName(s.Name), displaySecret(s.Secret, reveal)})
	}
	t.Render()
}

// renderCodes prints a Name/Code/Next Code table.
func renderCodes(w io.Writer, list []store.Secret) {
	t := newTable(w, "Name", "Code", "Next Code")
	for _, s := range list {
		t.Append([]string{
			displayName(s.Name),
			codeFmt.Sprint(s.Code.Code),
			fmt.Sprintf("%.2f", s.Code.SecondsUntilNext),
		})
	}
	t.Render()
}

func renderInfo(w io.Writer, info open2fa.Info) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(info); err != nil {
		return err
	}
	return enc.Close()
}
