package param

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/flightpath-dev/groundstation-core/internal/field"
)

// exportHeaderLine1 and exportHeaderLine2 are prepended as two "#"-comment
// lines: the product name, then the column layout.
const exportHeaderLine1 = "# groundstation-core parameter export"
const exportHeaderLine2 = "# name,value"

// WriteTo exports every synced parameter for componentID as "name,value"
// lines, preceded by the two-line header comment
func (m *Manager) WriteTo(w io.Writer, componentID uint8) error {
	m.mu.Lock()
	comp := m.components[componentID]
	var names []string
	values := make(map[string]field.TypedValue)
	if comp != nil {
		for name, f := range comp.fields {
			names = append(names, name)
			values[name] = f.RawValue()
		}
	}
	m.mu.Unlock()

	sort.Strings(names)

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, exportHeaderLine1); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw, exportHeaderLine2); err != nil {
		return err
	}
	for _, name := range names {
		v := values[name]
		if _, err := fmt.Fprintf(bw, "%s,%s\n", name, v.ToString(6)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFrom imports "name,value" pairs (comments begin with "#", blank lines
// are allowed) for componentID: each known parameter is coerced to its
// declared type, set locally, and PARAM_SET is transmitted for it. Unknown
// parameters and conversion failures produce one error message per line;
// the whole run does not abort.
func (m *Manager) ReadFrom(r io.Reader, componentID uint8) []string {
	var errs []string
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			errs = append(errs, fmt.Sprintf("line %d: expected \"name,value\"", lineNo))
			continue
		}
		name := strings.TrimSpace(parts[0])
		valueText := strings.TrimSpace(parts[1])

		m.mu.Lock()
		comp := m.components[componentID]
		var f *field.Field
		if comp != nil {
			f = comp.fields[name]
		}
		m.mu.Unlock()

		if f == nil {
			errs = append(errs, fmt.Sprintf("line %d: unknown parameter %q", lineNo, name))
			continue
		}
		value := field.FromString(f.Kind(), valueText)
		parsed, err := strconv.ParseFloat(valueText, 64)
		isFloat := f.Kind() == field.KindFloat32 || f.Kind() == field.KindFloat64
		if err != nil || (!isFloat && value.AsFloat64() != parsed) {
			errs = append(errs, fmt.Sprintf("line %d: %s: cannot convert %q to %s", lineNo, name, valueText, f.Kind()))
			continue
		}
		if f.Metadata() != nil {
			if errStr := f.Validate(valueText, false); errStr != "" {
				errs = append(errs, fmt.Sprintf("line %d: %s: %s", lineNo, name, errStr))
				continue
			}
		}
		f.SetCooked(value)
		m.Set(componentID, name, value)
	}
	return errs
}
