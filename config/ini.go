/*
=================================================================================
INI-STYLE CONFIGURATION PERSISTENCE
=================================================================================

Config.Load and Config.Save implement the sectioned key/value file format
named in spec.md section 6: one [Section] header per struct above, one
"KEY = VALUE" line per field inside it, values decoded as real, unsigned
integer, or boolean (True/False, case-sensitive) based on the field's Go
type. This is a direct field-by-reflection mapping: section names and
key names are exactly the Go struct/field names declared in config.go,
so there is no separate schema to keep in sync by hand.

No INI library appears anywhere in the example pack (the closest
relatives are github.com/BurntSushi/toml, which is TOML not INI, and
gopkg.in/yaml.v3, which is YAML) — see DESIGN.md for why this file is a
direct implementation rather than an imported dependency.
=================================================================================
*/
package config

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// ParseError describes a single malformed line encountered while loading
// an INI file. Per spec.md section 7, a ConfigParseFailure aborts the
// load (the partially-parsed file is discarded) but is never fatal to
// the caller: Load reports it through its wroteDefaults return, not err.
type ParseError struct {
	Path string
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: malformed config line %q", e.Path, e.Line, e.Text)
}

var sectionNames = []string{
	"Neuron", "NeuralConnexion", "SimulationParams",
	"InputImageParams", "PixelsParams", "MatchingParams",
}

// Load reads an INI-style config file at path. If the file does not
// exist, or a line in it cannot be parsed, Load writes the built-in
// defaults to path and returns them with wroteDefaults=true. err is
// non-nil only for an I/O failure while reading or writing the file —
// a malformed line is never reported as an error, matching spec.md's
// "a fresh defaults file may be written in its place, and the caller is
// notified via a boolean return" policy.
func Load(path string) (cfg Config, wroteDefaults bool, err error) {
	f, openErr := os.Open(path)
	if os.IsNotExist(openErr) {
		cfg = Default()
		if err = Save(cfg, path); err != nil {
			return cfg, false, err
		}
		return cfg, true, nil
	}
	if openErr != nil {
		return Config{}, false, openErr
	}
	defer f.Close()

	cfg = Default()
	parseErr := parseInto(&cfg, f, path)
	if parseErr == nil {
		return cfg, false, nil
	}

	cfg = Default()
	if err = Save(cfg, path); err != nil {
		return cfg, false, err
	}
	return cfg, true, nil
}

func parseInto(cfg *Config, f *os.File, path string) error {
	scanner := bufio.NewScanner(f)
	section := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return &ParseError{Path: path, Line: lineNo, Text: line}
			}
			section = strings.TrimSpace(line[1 : len(line)-1])
			if !validSection(section) {
				return &ParseError{Path: path, Line: lineNo, Text: line}
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return &ParseError{Path: path, Line: lineNo, Text: line}
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if section == "" {
			return &ParseError{Path: path, Line: lineNo, Text: line}
		}
		if err := setField(cfg, section, key, value); err != nil {
			return &ParseError{Path: path, Line: lineNo, Text: line}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return nil
}

func validSection(name string) bool {
	for _, s := range sectionNames {
		if s == name {
			return true
		}
	}
	return false
}

func setField(cfg *Config, section, key, value string) error {
	sv := reflect.ValueOf(cfg).Elem().FieldByName(section)
	if !sv.IsValid() {
		return fmt.Errorf("unknown section %q", section)
	}
	fv := sv.FieldByName(key)
	if !fv.IsValid() || !fv.CanSet() {
		return fmt.Errorf("unknown key %q in section %q", key, section)
	}
	switch fv.Kind() {
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	case reflect.Uint32, reflect.Uint, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		fv.SetUint(u)
	case reflect.Bool:
		switch value {
		case "True":
			fv.SetBool(true)
		case "False":
			fv.SetBool(false)
		default:
			return fmt.Errorf("boolean value must be True or False, got %q", value)
		}
	default:
		return fmt.Errorf("unsupported field kind %s", fv.Kind())
	}
	return nil
}

// Save writes cfg to path in the same sectioned format Load reads.
func Save(cfg Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	cv := reflect.ValueOf(cfg)
	for _, section := range sectionNames {
		fmt.Fprintf(w, "[%s]\n", section)
		sv := cv.FieldByName(section)
		st := sv.Type()
		for i := 0; i < st.NumField(); i++ {
			name := st.Field(i).Name
			fv := sv.Field(i)
			fmt.Fprintf(w, "%s = %s\n", name, formatValue(fv))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Uint32, reflect.Uint, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Bool:
		if v.Bool() {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
