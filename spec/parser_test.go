package spec

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
)

func parseSample(t *testing.T, name string) PacketState {
	t.Helper()
	p, err := NewParserFromFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("load %s: %+v", name, err)
	}
	state, err := p.Parse(ParseOptionsNone)
	if err != nil {
		t.Fatalf("parse %s: %+v", name, err)
	}
	return state
}

func parseString(xml string, options ParseOptions) (PacketState, error) {
	p, err := NewParserFromBytes([]byte(xml))
	if err != nil {
		return PacketState{}, err
	}
	return p.Parse(options)
}

func invalidResult(err error) ValidationResult {
	var invalid *InvalidSpecError
	if stderrors.As(err, &invalid) {
		return invalid.Result()
	}
	return Ok
}

func TestParseBasicPacket(t *testing.T) {
	g := NewWithT(t)

	state := parseSample(t, "basic.xml")
	g.Expect(state.Name).To(Equal("basic"))
	g.Expect(state.BasePacket).To(BeEmpty())
	g.Expect(state.Data).To(Equal([]PacketDataElement{
		{Type: TypeByte, Name: "action"},
		{Type: TypeChar, Name: "family"},
		{Type: TypeShort, Name: "playerId"},
		{Type: TypeThree, Name: "gold"},
		{Type: TypeInt, Name: "experience"},
		{Type: TypeString, Name: "code", Length: 4},
		{Type: TypeBreakString, Name: "playerName"},
		{Type: TypeEndString, Name: "message"},
	}))
}

func TestParseDerivedPacket(t *testing.T) {
	g := NewWithT(t)

	state := parseSample(t, "derived.xml")
	g.Expect(state.Name).To(Equal("derived"))
	g.Expect(state.BasePacket).To(Equal("basic"))
	g.Expect(state.Data).To(HaveLen(1))
}

func TestParseStructure(t *testing.T) {
	g := NewWithT(t)

	state := parseSample(t, "structure.xml")
	g.Expect(state.Data).To(HaveLen(1))

	el := state.Data[0]
	g.Expect(el.Type).To(Equal(TypeStructure))
	g.Expect(el.Name).To(Equal("position"))

	st, ok := el.MemberState.(*StructureState)
	g.Expect(ok).To(BeTrue())
	g.Expect(st.Members).To(Equal([]PacketDataElement{
		{Type: TypeShort, Name: "x"},
		{Type: TypeShort, Name: "y"},
		{Type: TypeChar, Name: "direction"},
	}))
}

func TestParseCondition(t *testing.T) {
	g := NewWithT(t)

	state := parseSample(t, "condition.xml")
	g.Expect(state.Data).To(HaveLen(2))

	first, second := state.Data[0], state.Data[1]
	g.Expect(first.Type).To(Equal(TypeCondition))
	g.Expect(first.Name).To(BeEmpty())
	g.Expect(second.Type).To(Equal(TypeCondition))
	g.Expect(second.Name).To(BeEmpty())

	c1 := first.MemberState.(*ConditionState)
	g.Expect(c1.Peek).To(BeFalse())
	g.Expect(c1.Test).To(Equal(PacketDataElement{Type: TypeChar, Name: "kind"}))
	g.Expect(c1.Cases).To(HaveLen(2))
	g.Expect(c1.Cases[0].TestValue).To(Equal("0"))
	g.Expect(c1.Cases[0].Members).To(HaveLen(2))
	g.Expect(c1.Cases[1].TestValue).To(Equal("1"))
	g.Expect(c1.Cases[1].Members).To(HaveLen(2))

	c2 := second.MemberState.(*ConditionState)
	g.Expect(c2.Peek).To(BeTrue())
	g.Expect(c2.Test).To(Equal(PacketDataElement{Type: TypeByte, Name: "marker"}))
	g.Expect(c2.Cases).To(HaveLen(2))
	g.Expect(c2.Cases[0].TestValue).To(Equal("1"))
	g.Expect(c2.Cases[1].TestValue).To(Equal("0"))
	g.Expect(c2.Cases[1].Members[1]).To(Equal(PacketDataElement{Type: TypeEndString, Name: "text"}))
}

func TestParseGroup(t *testing.T) {
	g := NewWithT(t)

	state := parseSample(t, "group.xml")
	g.Expect(state.Data).To(HaveLen(1))
	g.Expect(state.Data[0].Type).To(Equal(TypeGroup))

	gs := state.Data[0].MemberState.(*GroupState)
	g.Expect(gs.CountType).NotTo(BeNil())
	g.Expect(*gs.CountType).To(Equal(TypeChar))
	g.Expect(gs.BreakOn).NotTo(BeNil())
	g.Expect(*gs.BreakOn).To(Equal(255))
	g.Expect(gs.BreakType).NotTo(BeNil())
	g.Expect(*gs.BreakType).To(Equal(TypeByte))
	g.Expect(gs.Peek).NotTo(BeNil())
	g.Expect(*gs.Peek).To(BeFalse())

	g.Expect(gs.PreLoop).NotTo(BeNil())
	g.Expect(*gs.PreLoop).To(Equal(PacketDataElement{Type: TypeShort, Name: "total"}))
	g.Expect(gs.PostLoop).NotTo(BeNil())
	g.Expect(gs.PostLoop.Type).To(Equal(TypeBreakString))

	g.Expect(gs.Structure.Type).To(Equal(TypeStructure))
	g.Expect(gs.Structure.Name).To(Equal("items"))
	g.Expect(gs.Structure.MemberState.(*StructureState).Members).To(HaveLen(2))
}

func TestParseBasicGroupWithoutOptions(t *testing.T) {
	g := NewWithT(t)

	state := parseSample(t, "basicgroup.xml")
	g.Expect(state.Data).To(HaveLen(1))

	gs := state.Data[0].MemberState.(*GroupState)
	g.Expect(gs.CountType).To(BeNil())
	g.Expect(gs.BreakOn).To(BeNil())
	g.Expect(gs.BreakType).To(BeNil())
	g.Expect(gs.Peek).To(BeNil())
	g.Expect(gs.PreLoop).To(BeNil())
	g.Expect(gs.PostLoop).To(BeNil())
	g.Expect(gs.Structure.MemberState.(*StructureState).Members).To(Equal([]PacketDataElement{
		{Type: TypeByte, Name: "Hello"},
	}))
}

func TestParseIsRepeatable(t *testing.T) {
	g := NewWithT(t)

	p, err := NewParserFromFile(filepath.Join("testdata", "condition.xml"))
	g.Expect(err).NotTo(HaveOccurred())
	before := p.doc.Root.InnerXML()

	first, err := p.Parse(ParseOptionsNone)
	g.Expect(err).NotTo(HaveOccurred())
	second, err := p.Parse(SkipSchemaValidation)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(second).To(Equal(first))
	// 注释只在拷贝中被删除
	g.Expect(p.doc.Root.InnerXML()).To(Equal(before))
}

func TestParseIgnoresComments(t *testing.T) {
	g := NewWithT(t)

	state, err := parseString(`<packet name="c"><!-- a --><byte>a</byte><!-- b --></packet>`, ParseOptionsNone)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(state.Data).To(Equal([]PacketDataElement{{Type: TypeByte, Name: "a"}}))
}

func TestParseInvalidRootElement(t *testing.T) {
	g := NewWithT(t)
	const doc = `<?xml version="1.0" encoding="utf-8"?>
<Case />`

	_, err := parseString(doc, ParseOptionsNone)
	g.Expect(err).To(HaveOccurred())
	g.Expect(invalidResult(err)).To(Equal(SchemaError))

	_, err = parseString(doc, SkipSchemaValidation)
	g.Expect(err).To(HaveOccurred())
	g.Expect(invalidResult(err)).To(Equal(InvalidRootElement))
}

func TestParseRootIsCaseInsensitiveWithoutSchema(t *testing.T) {
	g := NewWithT(t)

	state, err := parseString(`<Packet name="p"><Byte>a</Byte></Packet>`, SkipSchemaValidation)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(state.Data).To(Equal([]PacketDataElement{{Type: TypeByte, Name: "a"}}))

	_, err = parseString(`<Packet name="p"><Byte>a</Byte></Packet>`, ParseOptionsNone)
	g.Expect(invalidResult(err)).To(Equal(SchemaError))
}

func TestParseDuplicateElements(t *testing.T) {
	g := NewWithT(t)
	const doc = `<?xml version="1.0" encoding="utf-8"?>
<packet name="test">
  <byte>duplicate</byte>
  <byte>duplicate</byte>
</packet>`

	for _, options := range []ParseOptions{ParseOptionsNone, SkipSchemaValidation} {
		_, err := parseString(doc, options)
		g.Expect(err).To(HaveOccurred())
		g.Expect(invalidResult(err)).To(Equal(ElementRedefinition))

		var invalid *InvalidSpecError
		g.Expect(stderrors.As(err, &invalid)).To(BeTrue())
		g.Expect(invalid.State.Line).To(Equal(4))
	}
}

func TestParseDuplicateElementsInDifferentScopes(t *testing.T) {
	g := NewWithT(t)
	const doc = `<?xml version="1.0" encoding="utf-8"?>
<packet name="test">
  <byte>duplicate</byte>
  <structure name="teststruct">
    <byte>duplicate</byte>
  </structure>
</packet>`

	_, err := parseString(doc, ParseOptionsNone)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = parseString(doc, SkipSchemaValidation)
	g.Expect(err).NotTo(HaveOccurred())
}

func TestParseRedefinitionComparesContentOnly(t *testing.T) {
	g := NewWithT(t)

	// 只比较元素内容, 标签和属性不参与比较
	for _, doc := range []string{
		`<packet name="t"><byte>x</byte><short>x</short></packet>`,
		`<packet name="t"><structure name="a"><byte>x</byte></structure><structure name="b"><byte>x</byte></structure></packet>`,
	} {
		for _, options := range []ParseOptions{ParseOptionsNone, SkipSchemaValidation} {
			_, err := parseString(doc, options)
			g.Expect(invalidResult(err)).To(Equal(ElementRedefinition), doc)
		}
	}

	_, err := parseString(`<packet name="t"><byte>x</byte><short>y</short></packet>`, ParseOptionsNone)
	g.Expect(err).NotTo(HaveOccurred())
}

func TestParseInvalidNodeType(t *testing.T) {
	g := NewWithT(t)

	_, err := parseString(`<packet name="thing"><wrong>thing</wrong></packet>`, SkipSchemaValidation)
	g.Expect(err).To(HaveOccurred())

	var malformed *MalformedSpecError
	g.Expect(stderrors.As(err, &malformed)).To(BeTrue())
	g.Expect(malformed.Element).To(Equal("wrong"))

	_, err = parseString(`<packet name="thing"><wrong>thing</wrong></packet>`, ParseOptionsNone)
	g.Expect(invalidResult(err)).To(Equal(SchemaError))
}

func TestParseMalformedWithoutSchema(t *testing.T) {
	g := NewWithT(t)

	cases := []string{
		`<packet><byte>a</byte></packet>`,
		`<packet name="p"><string length="x">a</string></packet>`,
		`<packet name="p"><condition peek="maybe"><byte>a</byte></condition></packet>`,
		`<packet name="p"><condition peek="true"></condition></packet>`,
		`<packet name="p"><structure><byte>a</byte></structure></packet>`,
		`<packet name="p"><group><preLoop><byte>a</byte></preLoop></group></packet>`,
	}
	for _, doc := range cases {
		_, err := parseString(doc, SkipSchemaValidation)
		var malformed *MalformedSpecError
		g.Expect(stderrors.As(err, &malformed)).To(BeTrue(), doc)
	}
}

func TestParseTagNamesAreCaseInsensitive(t *testing.T) {
	g := NewWithT(t)

	state, err := parseString(`<packet name="p"><BREAKSTRING>a</BREAKSTRING><endstring>b</endstring></packet>`, SkipSchemaValidation)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(state.Data).To(Equal([]PacketDataElement{
		{Type: TypeBreakString, Name: "a"},
		{Type: TypeEndString, Name: "b"},
	}))
}

func TestParseEmptyDocument(t *testing.T) {
	g := NewWithT(t)

	_, err := NewParserFromBytes([]byte(`<?xml version="1.0"?>`))
	g.Expect(err).To(HaveOccurred())

	_, err = NewParser(nil).Parse(ParseOptionsNone)
	g.Expect(err).To(HaveOccurred())
}
