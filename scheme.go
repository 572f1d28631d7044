package netengine

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine/log"
	"github.com/vuuvv/netengine/node"
	"github.com/vuuvv/netengine/spec"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scheme 一组数据包定义. 添加完所有定义后调用 Setup 校验 base 引用并编译.
type Scheme struct {
	options ParseOptions
	schema  spec.SchemaValidator
	states  []spec.PacketState
	sources map[string]string
	packets map[string]*node.Packet
}

func NewScheme(options ParseOptions) *Scheme {
	return &Scheme{
		options: options,
		sources: map[string]string{},
		packets: map[string]*node.Packet{},
	}
}

// NewSchemeFromDir 加载目录下所有 .xml 文件, 按文件名排序
func NewSchemeFromDir(dir string, options ParseOptions) (*Scheme, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	s := NewScheme(options)
	for _, f := range files {
		if err = s.AddFile(f); err != nil {
			return nil, err
		}
	}
	if err = s.Setup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheme) WithSchema(schema spec.SchemaValidator) *Scheme {
	s.schema = schema
	return s
}

func (s *Scheme) AddDocument(data []byte) error {
	p, err := spec.NewParserFromBytes(data)
	if err != nil {
		return err
	}
	return s.add(p, "<bytes>")
}

func (s *Scheme) AddFile(path string) error {
	p, err := spec.NewParserFromFile(path)
	if err != nil {
		return err
	}
	return s.add(p, path)
}

func (s *Scheme) add(p *spec.Parser, source string) error {
	if s.schema != nil {
		p.WithSchema(s.schema)
	}
	state, err := p.Parse(s.options)
	if err != nil {
		return errors.Wrapf(err, "parse '%s': %s", source, err.Error())
	}
	return s.AddState(state, source)
}

// AddState 添加已解析的数据包, 名字重复时返回错误
func (s *Scheme) AddState(state spec.PacketState, source string) error {
	if prev, ok := s.sources[state.Name]; ok {
		return errors.Errorf("packet '%s' from '%s' is already defined in '%s'", state.Name, source, prev)
	}
	s.sources[state.Name] = source
	s.states = append(s.states, state)
	log.Info("packet spec loaded", zap.String("packet", state.Name), zap.String("source", source))
	return nil
}

// Setup 校验 base 引用并编译所有数据包
func (s *Scheme) Setup() error {
	node.Register()

	result := spec.NewBasePacketValidator().ValidatePacketStates(s.states...)
	if err := result.Err(); err != nil {
		return err
	}

	byName := make(map[string]spec.PacketState, len(s.states))
	for _, st := range s.states {
		byName[st.Name] = st
	}
	packets := make(map[string]*node.Packet, len(s.states))
	for _, st := range s.states {
		p, err := node.CompilePacket(byName, st.Name)
		if err != nil {
			return err
		}
		packets[st.Name] = p
	}
	s.packets = packets
	return nil
}

// States 按添加顺序返回所有数据包定义
func (s *Scheme) States() []spec.PacketState {
	return append([]spec.PacketState(nil), s.states...)
}

func (s *Scheme) Packet(name string) (*node.Packet, error) {
	p, ok := s.packets[name]
	if !ok {
		return nil, errors.Errorf("packet '%s' not found", name)
	}
	return p, nil
}

func (s *Scheme) Decode(name string, data []byte) (map[string]any, error) {
	p, err := s.Packet(name)
	if err != nil {
		return nil, err
	}
	return p.Decode(data)
}

func (s *Scheme) Encode(name string, fields map[string]any) ([]byte, error) {
	p, err := s.Packet(name)
	if err != nil {
		return nil, err
	}
	b, err := p.Encode(fields)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// DumpYAML 将所有数据包定义以 YAML 输出
func (s *Scheme) DumpYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Packets []spec.PacketState `yaml:"packets"`
	}{s.states}); err != nil {
		return errors.WithStack(err)
	}
	if err := enc.Close(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
