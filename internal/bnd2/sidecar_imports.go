package bnd2

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// EncodeImports renders one resource's import list as a YAML sequence
// of single-key "<offset>: <id>" maps, hex-formatted, matching the
// per-resource "<id>_imports.yaml" sidecar layout.
func EncodeImports(imports []ImportEntry) ([]byte, error) {
	seq := encodeImportSeq(imports)
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{seq}}
	return yaml.Marshal(doc)
}

// EncodeCombinedImports renders the import lists of every resource that
// has at least one import into a single "0x<id>: [ ... ]" map, matching
// the combine-imports sidecar layout. Resources are emitted in entry
// order.
func EncodeCombinedImports(bundle *Bundle) ([]byte, error) {
	root := newMap()
	for i := range bundle.Entries {
		e := &bundle.Entries[i]
		if len(e.Imports) == 0 {
			continue
		}
		putMap(root, fmt.Sprintf("0x%08X", e.ID), encodeImportSeq(e.Imports))
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	return yaml.Marshal(doc)
}

func encodeImportSeq(imports []ImportEntry) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, imp := range imports {
		entry := newMap()
		putMap(entry, fmt.Sprintf("0x%08X", imp.Offset), hexNode(imp.ID))
		seq.Content = append(seq.Content, entry)
	}
	return seq
}

// DecodeImports parses a per-resource "<id>_imports.yaml" sidecar into
// ImportRecords.
func DecodeImports(data []byte) ([]ImportRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing imports: %v", ErrSidecarValidation, err)
	}
	// Empty input leaves doc as the zero Node: no imports.
	if doc.Kind == 0 {
		return nil, nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}
	return decodeImportSeq(root)
}

// DecodeCombinedImports parses a combine-imports sidecar, returning the
// import list keyed by resource id.
func DecodeCombinedImports(data []byte) (map[uint64][]ImportRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing combined imports: %v", ErrSidecarValidation, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected combined imports root to be a map", ErrSidecarValidation)
	}

	out := make(map[uint64][]ImportRecord)
	seen := make(map[uint64]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		id, err := ValidateResourceIDKey(keyNode.Value)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: resource 0x%08X: duplicate entry in combined imports file", ErrSidecarValidation, id)
		}
		seen[id] = true

		records, err := decodeImportSeq(valNode)
		if err != nil {
			return nil, err
		}
		out[id] = records
	}
	return out, nil
}

func decodeImportSeq(n *yaml.Node) ([]ImportRecord, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: expected imports node to be a sequence", ErrSidecarValidation)
	}
	var out []ImportRecord
	for _, item := range n.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return nil, fmt.Errorf("%w: each import must be a single offset:id map entry", ErrSidecarValidation)
		}
		var offset uint32
		if _, err := fmt.Sscanf(item.Content[0].Value, "0x%X", &offset); err != nil {
			return nil, fmt.Errorf("%w: invalid import offset %q", ErrSidecarValidation, item.Content[0].Value)
		}
		var id uint64
		if err := item.Content[1].Decode(&id); err != nil {
			return nil, fmt.Errorf("%w: invalid import id", ErrSidecarValidation)
		}
		out = append(out, ImportRecord{Offset: offset, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out, nil
}
