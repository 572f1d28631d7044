package netengine

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/vuuvv/netengine/core"
	"github.com/vuuvv/netengine/spec"
	"gopkg.in/yaml.v3"
)

func TestSchemeFromDir(t *testing.T) {
	g := NewWithT(t)

	s, err := NewSchemeFromDir("testdata/specs", spec.ParseOptionsNone)
	g.Expect(err).NotTo(HaveOccurred())

	var names []string
	for _, st := range s.States() {
		names = append(names, st.Name)
	}
	g.Expect(names).To(Equal([]string{"header", "login", "inventory"}))

	fields := map[string]any{"action": 1, "family": 2, "user": "ann", "password": "pw"}
	data, err := s.Encode("login", fields)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(data).To(Equal([]byte{1, 2, 'a', 'n', 'n', 0xFF, 'p', 'w', 0xFF}))

	decoded, err := s.Decode("login", data)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(decoded).To(Equal(fields))

	p, err := s.Packet("inventory")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p.Chain).To(Equal([]string{"header", "inventory"}))

	_, err = s.Packet("missing")
	g.Expect(err).To(HaveOccurred())
}

func TestSchemeRejectsMissingBase(t *testing.T) {
	g := NewWithT(t)

	s := NewScheme(spec.ParseOptionsNone)
	g.Expect(s.AddDocument([]byte(`<packet name="a" base="b"><byte>x</byte></packet>`))).To(Succeed())

	err := s.Setup()
	g.Expect(err).To(HaveOccurred())
	var invalid *spec.InvalidSpecError
	g.Expect(err).To(BeAssignableToTypeOf(invalid))
	g.Expect(err.(*spec.InvalidSpecError).Result()).To(Equal(spec.NonexistentBasePacket))
}

func TestSchemeRejectsDuplicatePackets(t *testing.T) {
	g := NewWithT(t)

	s := NewScheme(spec.ParseOptionsNone)
	g.Expect(s.AddDocument([]byte(`<packet name="a"><byte>x</byte></packet>`))).To(Succeed())
	g.Expect(s.AddDocument([]byte(`<packet name="a"><short>y</short></packet>`))).NotTo(Succeed())
	g.Expect(s.States()).To(HaveLen(1))
}

func TestSchemeRejectsInvalidDocument(t *testing.T) {
	g := NewWithT(t)

	s := NewScheme(spec.ParseOptionsNone)
	err := s.AddDocument([]byte(`<Case />`))
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring(spec.SchemaError.String()))

	s = NewScheme(spec.SkipSchemaValidation)
	err = s.AddDocument([]byte(`<Case />`))
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring(spec.InvalidRootElement.String()))
}

func TestSchemeDumpYAML(t *testing.T) {
	g := NewWithT(t)

	s := NewScheme(spec.ParseOptionsNone)
	g.Expect(s.AddDocument([]byte(`<packet name="a"><string length="3">code</string></packet>`))).To(Succeed())
	g.Expect(s.Setup()).To(Succeed())

	var buf bytes.Buffer
	g.Expect(s.DumpYAML(&buf)).To(Succeed())

	var out struct {
		Packets []struct {
			Name string `yaml:"name"`
			Data []struct {
				Type   string `yaml:"type"`
				Name   string `yaml:"name"`
				Length int    `yaml:"length"`
			} `yaml:"data"`
		} `yaml:"packets"`
	}
	g.Expect(yaml.Unmarshal(buf.Bytes(), &out)).To(Succeed())
	g.Expect(out.Packets).To(HaveLen(1))
	g.Expect(out.Packets[0].Name).To(Equal("a"))
	g.Expect(out.Packets[0].Data).To(HaveLen(1))
	g.Expect(out.Packets[0].Data[0].Type).To(Equal("string"))
	g.Expect(out.Packets[0].Data[0].Length).To(Equal(3))
}

func TestSchemeErrorsKeepTheCause(t *testing.T) {
	g := NewWithT(t)

	s := NewScheme(spec.ParseOptionsNone)
	err := s.AddDocument([]byte(`<packet name="a"><byte>x</byte><byte>x</byte></packet>`))
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("parse '<bytes>'"))
	g.Expect(err.Error()).To(ContainSubstring(spec.ElementRedefinition.String()))

	s = NewScheme(spec.ParseOptionsNone)
	g.Expect(s.AddDocument([]byte(`<packet name="a"><short>x</short></packet>`))).To(Succeed())
	g.Expect(s.Setup()).To(Succeed())
	_, err = s.Decode("a", []byte{1})
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("decode packet 'a'"))
	g.Expect(err.Error()).To(ContainSubstring(core.ErrOutOfBounds.Error()))
}
