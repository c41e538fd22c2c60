package layout

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlSchema mirrors Schema in a form that is pleasant to write by hand:
//
//	root: AppConfig
//	structs:
//	  - name: Version
//	    fields: [{name: major, type: uint32}]
//	tables:
//	  - name: AppConfig
//	    fields:
//	      - {name: schema_version, type: Version, required: true}
//	      - {name: max_connections, slot: 4, type: uint32, default: 100}
//	      - {name: allowed_hosts, type: "[string]"}
//
// Slots default to the field's position in the list.
type yamlSchema struct {
	Root       string       `yaml:"root"`
	Identifier string       `yaml:"identifier"`
	Structs    []yamlStruct `yaml:"structs"`
	Tables     []yamlTable  `yaml:"tables"`
}

type yamlStruct struct {
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlTable struct {
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name     string  `yaml:"name"`
	Slot     *uint16 `yaml:"slot"`
	Type     string  `yaml:"type"`
	Default  *string `yaml:"default"`
	Required bool    `yaml:"required"`
}

// ParseYAML compiles a YAML schema description.
func ParseYAML(data []byte) (*Descriptor, error) {
	var ys yamlSchema
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	s := Schema{Root: ys.Root, Identifier: ys.Identifier}
	structNames := make(map[string]bool, len(ys.Structs))
	for _, st := range ys.Structs {
		out := &Struct{Name: st.Name}
		for _, f := range st.Fields {
			k, ok := ParseKind(f.Type)
			if !ok || !k.IsScalar() {
				return nil, fmt.Errorf("%w: struct %s field %s: %q is not a scalar type", ErrInvalidSchema, st.Name, f.Name, f.Type)
			}
			out.Fields = append(out.Fields, StructField{Name: f.Name, Kind: k})
		}
		structNames[st.Name] = true
		s.Structs = append(s.Structs, out)
	}
	for _, yt := range ys.Tables {
		t := &Table{Name: yt.Name}
		for i, yf := range yt.Fields {
			f := FieldSpec{Name: yf.Name, Slot: uint16(i), Required: yf.Required}
			if yf.Slot != nil {
				f.Slot = *yf.Slot
			}
			f.Type = parseWireType(strings.TrimSpace(yf.Type), structNames)
			if yf.Default != nil {
				v, err := parseDefault(f.Type.Kind, *yf.Default)
				if err != nil {
					return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidSchema, yt.Name, yf.Name, err)
				}
				f.Default = v
			}
			t.Fields = append(t.Fields, f)
		}
		s.Tables = append(s.Tables, t)
	}
	return Compile(s)
}

func parseWireType(name string, structs map[string]bool) WireType {
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		elem := strings.TrimSpace(name[1 : len(name)-1])
		if k, ok := ParseKind(elem); ok {
			return VectorOf(k)
		}
		if structs[elem] {
			return VectorOfStructs(elem)
		}
		return VectorOfTables(elem)
	}
	if k, ok := ParseKind(name); ok {
		return TypeOf(k)
	}
	if structs[name] {
		return StructOf(name)
	}
	return TableOf(name)
}

func parseDefault(k Kind, s string) (Value, error) {
	switch {
	case k == Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case k == Float32 || k == Float64:
		f, err := strconv.ParseFloat(s, k.Width()*8)
		if err != nil {
			return Value{}, err
		}
		return Float(k, f), nil
	case k == Int8 || k == Int16 || k == Int32 || k == Int64:
		n, err := strconv.ParseInt(s, 0, k.Width()*8)
		if err != nil {
			return Value{}, err
		}
		return Int(k, n), nil
	case k.IsScalar():
		n, err := strconv.ParseUint(s, 0, k.Width()*8)
		if err != nil {
			return Value{}, err
		}
		return Uint(k, n), nil
	}
	return Value{}, fmt.Errorf("default given for non-scalar %s", k)
}
