package export

import (
	"io"
	"sort"

	"github.com/graphbio/bel/pkg/graph"
)

// Format is one export adapter addressable by name. The API and the
// CLI select adapters through this table, so both expose the same
// format vocabulary.
type Format struct {
	Name        string
	ContentType string

	// Ext is the filename extension, without the dot.
	Ext   string
	Write func(w io.Writer, g *graph.Graph) error
}

var formats = map[string]Format{
	"nodelink": {Name: "nodelink", ContentType: "application/json", Ext: "json", Write: WriteNodeLink},
	"graphml":  {Name: "graphml", ContentType: "application/xml", Ext: "graphml", Write: WriteGraphML},
	"tsv":      {Name: "tsv", ContentType: "text/tab-separated-values", Ext: "tsv", Write: WriteEdgeTSV},
	"csv":      {Name: "csv", ContentType: "text/csv", Ext: "csv", Write: WriteEdgeCSV},
	"gsea":     {Name: "gsea", ContentType: "text/plain", Ext: "grp", Write: WriteGSEA},
	"snapshot": {Name: "snapshot", ContentType: "application/octet-stream", Ext: "snapshot", Write: WriteSnapshot},
	"bel":      {Name: "bel", ContentType: "text/plain", Ext: "bel", Write: WriteScript},
}

// ByName looks up a format. The second return is false for names the
// table does not carry.
func ByName(name string) (Format, bool) {
	format, ok := formats[name]
	return format, ok
}

// FormatNames lists the selectable format names in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
