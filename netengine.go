package netengine

import (
	"github.com/vuuvv/netengine/core"
	"github.com/vuuvv/netengine/log"
	"github.com/vuuvv/netengine/node"
	"github.com/vuuvv/netengine/spec"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Packet = core.Packet
type Builder = core.Builder
type SeekOrigin = core.SeekOrigin

var NewPacket = core.NewPacket
var NewBuilder = core.NewBuilder

type PacketState = spec.PacketState
type ParseOptions = spec.ParseOptions
type ValidationState = spec.ValidationState

var NewParser = spec.NewParser
var NewParserFromBytes = spec.NewParserFromBytes
var NewParserFromFile = spec.NewParserFromFile

type CompiledPacket = node.Packet

// Setup 安装开发模式的 zap logger 并注册所有节点类型.
// 已经通过 zap.ReplaceGlobals 设置过 logger 时沿用全局 logger.
func Setup() {
	var logger *zap.Logger
	var err error
	if !zap.L().Core().Enabled(zapcore.PanicLevel) {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
	} else {
		logger = zap.L()
	}
	log.SetDefaultLogger(logger)

	node.Register()
}
