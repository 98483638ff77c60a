package bnd2

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BundleMetadata mirrors the "bundle" node of a .meta.yaml sidecar.
// The three flag fields are pointers because an unspecified or
// malformed flag defaults to true on create (the reference tool warns
// and proceeds rather than rejecting the file) rather than to Go's
// zero value of false.
type BundleMetadata struct {
	Platform             Platform
	Compressed           *bool
	MainMemOptimised     *bool
	GraphicsMemOptimised *bool
}

// FlagOrDefaultTrue reports b's value, or true if b is nil.
func FlagOrDefaultTrue(b *bool) bool {
	return b == nil || *b
}

// ResourceMetadata mirrors one entry of the "resources" node of a
// .meta.yaml sidecar, keyed by its "0x%08X" resource id.
type ResourceMetadata struct {
	ID uint64

	Type uint32

	// SecondaryMemoryType is 1 or 2, or -1 if the resource has no
	// secondary portion.
	SecondaryMemoryType int

	// Alignment holds one entry for the primary portion and, if
	// SecondaryMemoryType != -1, a second for the secondary portion.
	Alignment []uint32
}

// Metadata is the fully-parsed contents of a .meta.yaml sidecar.
// Resources is kept as a slice, not a map, because resource order in
// the file is significant for round-tripping and duplicate detection.
type Metadata struct {
	Bundle    BundleMetadata
	Resources []ResourceMetadata
}

// ImportRecord is one "offset: id" pair inside a resource's imports
// list.
type ImportRecord struct {
	Offset uint32
	ID     uint64
}

// EncodeMetadata renders a bundle's metadata as a .meta.yaml
// sidecar. Resource and import ids/types/alignments are written as
// 0x-prefixed hex literals and the platform and secondary-memory-type
// fields as decimal, matching the reference tool's emitter
// configuration; resource order follows entry-table order.
//
// It builds a yaml.Node tree by hand rather than marshalling a plain Go
// struct, because Marshal of a struct/map sorts or reorders keys and
// always renders integers in decimal — neither of which this format
// allows.
func EncodeMetadata(bundle *Bundle) ([]byte, error) {
	bundleNode := newMap()
	putMap(bundleNode, "platform", decNode(int64(bundle.Platform)))
	putMap(bundleNode, "compressed", boolNode(bundle.Flags.Has(FlagIsCompressed)))
	putMap(bundleNode, "mainMemOptimised", boolNode(bundle.Flags.Has(FlagIsMainMemOptimised)))
	putMap(bundleNode, "graphicsMemOptimised", boolNode(bundle.Flags.Has(FlagIsGraphicsMemOptimised)))

	resourcesNode := newMap()
	for i := range bundle.Entries {
		e := &bundle.Entries[i]
		detail := newMap()
		putMap(detail, "type", hexNode(uint64(e.Type)))

		sec := e.SecondaryMemoryType()
		if sec != -1 {
			putMap(detail, "secondaryMemoryType", decNode(int64(sec)))
		}

		alignSeq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		alignSeq.Content = append(alignSeq.Content, hexNode(uint64(Alignment(e.UncompressedInfo[0]))))
		if sec != -1 {
			alignSeq.Content = append(alignSeq.Content, hexNode(uint64(Alignment(e.UncompressedInfo[sec]))))
		}
		putMap(detail, "alignment", alignSeq)

		putMap(resourcesNode, fmt.Sprintf("0x%08X", e.ID), detail)
	}

	root := newMap()
	putMap(root, "bundle", bundleNode)
	putMap(root, "resources", resourcesNode)

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	return yaml.Marshal(doc)
}

// DecodeMetadata parses and structurally validates a .meta.yaml
// sidecar, returning the entries in file order.
func DecodeMetadata(data []byte) (*Metadata, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing metadata: %v", ErrSidecarValidation, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, fmt.Errorf("%w: metadata file is empty", ErrSidecarValidation)
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected root node to be a map", ErrSidecarValidation)
	}

	bundleNode := mapGet(root, "bundle")
	if bundleNode == nil {
		return nil, fmt.Errorf("%w: missing bundle node", ErrSidecarValidation)
	}
	bundleMeta, err := decodeBundleMetadata(bundleNode)
	if err != nil {
		return nil, err
	}

	resourcesNode := mapGet(root, "resources")
	if resourcesNode == nil {
		return nil, fmt.Errorf("%w: missing resources node", ErrSidecarValidation)
	}
	if resourcesNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected resources node to be a map", ErrSidecarValidation)
	}
	resources, err := decodeResourceMetadata(resourcesNode)
	if err != nil {
		return nil, err
	}

	return &Metadata{Bundle: bundleMeta, Resources: resources}, nil
}

func decodeBundleMetadata(n *yaml.Node) (BundleMetadata, error) {
	var m BundleMetadata
	if n.Kind != yaml.MappingNode {
		return m, fmt.Errorf("%w: expected bundle node to be a map", ErrSidecarValidation)
	}

	platformNode := mapGet(n, "platform")
	if platformNode == nil {
		return m, fmt.Errorf("%w: bundle node is missing platform", ErrSidecarValidation)
	}
	var p int
	if err := platformNode.Decode(&p); err != nil || p < 1 || p > 3 {
		return m, fmt.Errorf("%w: bundle platform must be 1, 2, or 3", ErrSidecarValidation)
	}
	m.Platform = Platform(p)

	m.Compressed = decodeOptionalFlag(n, "compressed")
	m.MainMemOptimised = decodeOptionalFlag(n, "mainMemOptimised")
	m.GraphicsMemOptimised = decodeOptionalFlag(n, "graphicsMemOptimised")
	return m, nil
}

// decodeOptionalFlag returns nil (meaning "default to true") if key is
// absent or not a scalar, otherwise its decoded boolean value.
func decodeOptionalFlag(n *yaml.Node, key string) *bool {
	v := mapGet(n, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return nil
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return nil
	}
	return &b
}

func decodeResourceMetadata(n *yaml.Node) ([]ResourceMetadata, error) {
	var out []ResourceMetadata
	seen := make(map[uint64]bool)

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]

		id, err := ValidateResourceIDKey(keyNode.Value)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: resource 0x%08X: duplicate entry", ErrSidecarValidation, id)
		}
		seen[id] = true

		if valNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: resource %s: expected node to be a map", ErrSidecarValidation, keyNode.Value)
		}

		typeNode := mapGet(valNode, "type")
		if typeNode == nil {
			return nil, fmt.Errorf("%w: resource %s: missing type", ErrSidecarValidation, keyNode.Value)
		}
		var typ uint32
		if err := typeNode.Decode(&typ); err != nil {
			return nil, fmt.Errorf("%w: resource %s: invalid type", ErrSidecarValidation, keyNode.Value)
		}

		rm := ResourceMetadata{ID: id, Type: typ, SecondaryMemoryType: -1}

		if secNode := mapGet(valNode, "secondaryMemoryType"); secNode != nil {
			var sec int
			if err := secNode.Decode(&sec); err != nil || (sec != 1 && sec != 2) {
				return nil, fmt.Errorf("%w: resource %s: secondaryMemoryType must be 1 or 2", ErrSidecarValidation, keyNode.Value)
			}
			rm.SecondaryMemoryType = sec
		}

		if alignNode := mapGet(valNode, "alignment"); alignNode != nil {
			if alignNode.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%w: resource %s: expected alignment node to be a sequence", ErrSidecarValidation, keyNode.Value)
			}
			for _, a := range alignNode.Content {
				var v uint32
				if err := a.Decode(&v); err != nil {
					return nil, fmt.Errorf("%w: resource %s: invalid alignment value", ErrSidecarValidation, keyNode.Value)
				}
				if _, ok := AlignExpFromValue(v); !ok {
					// Non-fatal: the reference tool warns and falls back to
					// the default alignment rather than aborting creation.
					v = 0
				}
				rm.Alignment = append(rm.Alignment, v)
			}
		}

		out = append(out, rm)
	}
	return out, nil
}

// ValidateResourceIDKey parses a "0x%08X"-style metadata map key into a
// resource id, rejecting anything that isn't a valid non-zero 32-bit
// value.
func ValidateResourceIDKey(key string) (uint64, error) {
	var id uint64
	n, err := fmt.Sscanf(key, "0x%X", &id)
	if err != nil || n != 1 {
		if _, err2 := fmt.Sscanf(key, "%d", &id); err2 != nil {
			return 0, fmt.Errorf("%w: resource key %q is not a valid integer", ErrSidecarValidation, key)
		}
	}
	if id == 0 || id > 0xFFFFFFFF {
		return 0, fmt.Errorf("%w: resource key %q is out of range", ErrSidecarValidation, key)
	}
	return id, nil
}

// yaml.Node construction helpers, used to keep EncodeMetadata/
// EncodeImports's field order and hex/decimal formatting under direct
// control.

func newMap() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func putMap(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, strNode(key), value)
}

func mapGet(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func hexNode(v uint64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("0x%X", v)}
}

func decNode(v int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", v)}
}

func boolNode(v bool) *yaml.Node {
	s := "false"
	if v {
		s = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: s}
}
