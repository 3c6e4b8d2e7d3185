package orchestration

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/temirov/repos/internal/fleet"
)

const (
	inventoryHeaderNameConstant   = "NAME"
	inventoryHeaderURLConstant    = "URL"
	inventoryHeaderTagsConstant   = "TAGS"
	inventoryHeaderTargetConstant = "TARGET"
	inventoryTagSeparatorConstant = ","
	inventoryJSONIndentConstant   = "  "
)

// RenderInventoryTable writes the selected records as a table.
func RenderInventoryTable(writer io.Writer, records []fleet.RepositoryRecord) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{inventoryHeaderNameConstant, inventoryHeaderURLConstant, inventoryHeaderTagsConstant, inventoryHeaderTargetConstant})
	table.SetAutoWrapText(false)
	for _, record := range records {
		table.Append([]string{record.Name, record.URL, strings.Join(record.Tags, inventoryTagSeparatorConstant), record.TargetDirectory()})
	}
	table.Render()
}

// RenderInventoryJSON writes the selected records as an indented JSON array.
func RenderInventoryJSON(writer io.Writer, records []fleet.RepositoryRecord) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", inventoryJSONIndentConstant)
	if records == nil {
		records = []fleet.RepositoryRecord{}
	}
	return encoder.Encode(records)
}
