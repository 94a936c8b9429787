// Package yamlstore reads and writes rig documents as YAML ".rig" files.
//
// Construction arguments keep their order. Identifier values are written
// as tagged scalars (!id) and identifier lists as tagged sequences (!ids),
// so they decode back to identifiers rather than plain strings.
package yamlstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// Extension is the required file extension for rig documents.
const Extension = ".rig"

// ErrExtension is returned when a path does not end in Extension.
var ErrExtension = errors.New("rig documents must use the " + Extension + " extension")

type documentFile struct {
	Version    float64        `yaml:"version"`
	Components []fragmentFile `yaml:"components"`
}

type fragmentFile struct {
	Type        string           `yaml:"type"`
	Side        string           `yaml:"side,omitempty"`
	Region      string           `yaml:"region,omitempty"`
	Kwargs      *kwargsNode      `yaml:"kwargs,omitempty"`
	Attachments *attachmentsFile `yaml:"attachments,omitempty"`
	Handles     []handleFile     `yaml:"handles,omitempty"`
}

type attachmentsFile struct {
	Point  []string `yaml:"point,omitempty"`
	Orient []string `yaml:"orient,omitempty"`
}

type handleFile struct {
	Index       int           `yaml:"index"`
	LockedAttrs []string      `yaml:"locked_attrs,omitempty"`
	RotateOrder int           `yaml:"rotate_order"`
	Nested      *fragmentFile `yaml:"nested,omitempty"`
}

// Marshal encodes doc as YAML.
func Marshal(doc *rig.Document) ([]byte, error) {
	if doc == nil {
		return nil, rig.ErrNoDocument
	}
	file := documentFile{Version: doc.Version}
	for i, f := range doc.Components {
		ff, err := toFragmentFile(f)
		if err != nil {
			return nil, fmt.Errorf("component %d (%s): %w", i, f.Key(), err)
		}
		file.Components = append(file.Components, ff)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return nil, fmt.Errorf("encoding rig document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding rig document: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a YAML rig document.
func Unmarshal(data []byte) (*rig.Document, error) {
	var file documentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rig document: %w", err)
	}
	doc := &rig.Document{Version: file.Version}
	for i, ff := range file.Components {
		f, err := fromFragmentFile(ff)
		if err != nil {
			return nil, fmt.Errorf("component %d (%s): %w", i, ff.Type, err)
		}
		doc.Components = append(doc.Components, f)
	}
	return doc, nil
}

// Save writes doc to path atomically.
func Save(path string, doc *rig.Document) error {
	if err := checkExtension(path); err != nil {
		return err
	}
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating rig directory: %w", err)
	}
	temp, err := os.CreateTemp(dir, ".rig.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	log.Info(log.CatStore, "saved rig document", "path", path, "version", doc.Version, "components", len(doc.Components))
	return nil
}

// Load reads the rig document at path.
func Load(path string) (*rig.Document, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rig document: %w", err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug(log.CatStore, "loaded rig document", "path", path, "version", doc.Version, "components", len(doc.Components))
	return doc, nil
}

func checkExtension(path string) error {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return fmt.Errorf("%w: %s", ErrExtension, path)
	}
	return nil
}

func toFragmentFile(f rig.Fragment) (fragmentFile, error) {
	ff := fragmentFile{Type: f.Type, Side: string(f.Side), Region: f.Region}
	if f.Kwargs.Len() > 0 {
		node, err := encodeArgs(f.Kwargs)
		if err != nil {
			return ff, err
		}
		ff.Kwargs = &kwargsNode{node: node}
	}
	if !f.Attachments.IsZero() {
		ff.Attachments = &attachmentsFile{
			Point:  identifierStrings(f.Attachments.Point),
			Orient: identifierStrings(f.Attachments.Orient),
		}
	}
	for _, hd := range f.Handles {
		hf := handleFile{Index: hd.Index, LockedAttrs: hd.LockedAttrs, RotateOrder: hd.RotateOrder}
		if hd.Nested != nil {
			nested, err := toFragmentFile(*hd.Nested)
			if err != nil {
				return ff, fmt.Errorf("handle %d: %w", hd.Index, err)
			}
			hf.Nested = &nested
		}
		ff.Handles = append(ff.Handles, hf)
	}
	return ff, nil
}

func fromFragmentFile(ff fragmentFile) (rig.Fragment, error) {
	if ff.Type == "" {
		return rig.Fragment{}, errors.New("missing component type")
	}
	f := rig.Fragment{Type: ff.Type, Side: scene.Side(ff.Side), Region: ff.Region}
	if ff.Kwargs != nil && ff.Kwargs.node != nil {
		args, err := decodeArgs(ff.Kwargs.node)
		if err != nil {
			return f, err
		}
		f.Kwargs = args
	}
	if ff.Attachments != nil {
		point, err := parseIdentifiers(ff.Attachments.Point)
		if err != nil {
			return f, fmt.Errorf("point attachments: %w", err)
		}
		orient, err := parseIdentifiers(ff.Attachments.Orient)
		if err != nil {
			return f, fmt.Errorf("orient attachments: %w", err)
		}
		f.Attachments = rig.Attachments{Point: point, Orient: orient}
	}
	for _, hf := range ff.Handles {
		hd := rig.HandleData{Index: hf.Index, LockedAttrs: hf.LockedAttrs, RotateOrder: hf.RotateOrder}
		if hf.Nested != nil {
			nested, err := fromFragmentFile(*hf.Nested)
			if err != nil {
				return f, fmt.Errorf("handle %d: %w", hf.Index, err)
			}
			hd.Nested = &nested
		}
		f.Handles = append(f.Handles, hd)
	}
	return f, nil
}

func identifierStrings(ids []rig.Identifier) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseIdentifiers(values []string) ([]rig.Identifier, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]rig.Identifier, len(values))
	for i, v := range values {
		id, err := rig.ParseIdentifier(v)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}
