package spec

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestReadDocument(t *testing.T) {
	g := NewWithT(t)

	doc, err := ParseDocumentString(`<?xml version="1.0"?>
<!-- prolog -->
<packet name="p">
  <byte>a &amp; b</byte>
  <!-- inner -->
  <structure name="s"><short>x</short></structure>
</packet>`)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(doc.Prolog).To(HaveLen(1))
	g.Expect(doc.Root.Name).To(Equal("packet"))
	g.Expect(doc.Root.Line).To(Equal(3))

	children := doc.Root.ChildElements()
	g.Expect(children).To(HaveLen(2))
	g.Expect(children[0].InnerText()).To(Equal("a & b"))
	g.Expect(children[0].InnerXML()).To(Equal("a &amp; b"))
	g.Expect(children[1].Parent).To(BeIdenticalTo(doc.Root))
	g.Expect(doc.Root.Descendants()).To(HaveLen(3))

	clone := doc.Clone()
	clone.RemoveComments()
	g.Expect(clone.Prolog).To(BeEmpty())
	g.Expect(clone.Root.Children).To(HaveLen(2))
	g.Expect(doc.Root.Children).To(HaveLen(3))
}

func TestReadDocumentErrors(t *testing.T) {
	g := NewWithT(t)

	_, err := ParseDocumentString(`<packet>`)
	g.Expect(err).To(HaveOccurred())

	_, err = ParseDocumentString(`<a /><b />`)
	g.Expect(err).To(HaveOccurred())

	_, err = LoadDocument("testdata/missing.xml")
	g.Expect(err).To(HaveOccurred())
}

func TestInnerXMLEmptyElement(t *testing.T) {
	g := NewWithT(t)

	doc, err := ParseDocumentString(`<packet><case value="1"></case></packet>`)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(doc.Root.InnerXML()).To(Equal(`<case value="1" />`))
}
