// Package resolve fetches and parses namespace and annotation
// definition files. A Resolver caches parsed value sets by location
// and hands them to compile sessions; locations may be HTTP(S) URLs,
// local paths, or s3:// keys when an object fetcher is wired in.
package resolve

import (
	"fmt"
	"strings"
)

// File is one parsed definition document: the INI-like header
// sections plus the value set. Values maps member names to their
// encoding strings.
type File struct {
	Sections map[string]map[string]string
	Values   map[string]string
}

// Keyword returns the keyword the file declares for itself, from the
// [Namespace] or [AnnotationDefinition] section. Empty when the file
// declares none.
func (f *File) Keyword() string {
	for _, section := range []string{"Namespace", "AnnotationDefinition"} {
		if keyword := f.Sections[section]["Keyword"]; keyword != "" {
			return keyword
		}
	}
	return ""
}

// ParseFile parses the .belns and .belanno format: [Section] headers,
// key=value lines, and one Name|Encoding entry per line inside
// [Values]. Blank lines and # comments are skipped. A file without
// value entries is an error.
func ParseFile(data []byte) (*File, error) {
	file := &File{
		Sections: make(map[string]map[string]string),
		Values:   make(map[string]string),
	}
	section := ""
	for number, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			if section != "Values" && file.Sections[section] == nil {
				file.Sections[section] = make(map[string]string)
			}
			continue
		}
		switch section {
		case "":
			return nil, fmt.Errorf("line %d is outside any section", number+1)
		case "Values":
			name, encoding := line, ""
			// The encoding follows the last pipe; names may contain
			// pipes themselves.
			if i := strings.LastIndexByte(line, '|'); i >= 0 {
				name, encoding = line[:i], line[i+1:]
			}
			if name == "" {
				return nil, fmt.Errorf("line %d has an empty value name", number+1)
			}
			file.Values[name] = encoding
		default:
			key, value, found := strings.Cut(line, "=")
			if !found {
				return nil, fmt.Errorf("line %d in [%s] is not a key=value pair", number+1, section)
			}
			file.Sections[section][strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	if len(file.Values) == 0 {
		return nil, fmt.Errorf("no [Values] entries found")
	}
	return file, nil
}
