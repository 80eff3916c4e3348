package xdbg

// 协议常量。
const (
	// protocolMagic 帧魔数，用于快速识别非本协议的连接。
	protocolMagic uint16 = 0xBA5E

	// protocolVersion 协议版本。
	protocolVersion uint8 = 0x01

	// headerSize 帧头大小：魔数(2) + 版本(1) + 类型(1) + 长度(4)。
	headerSize = 8

	// MaxPayloadSize payload 上限（1MB）。
	MaxPayloadSize = 1 << 20

	// jsonOverhead Response 的 JSON 结构开销预留（字段名、引号、括号）。
	jsonOverhead = 256

	// DefaultMaxOutputSize 默认的命令输出上限。
	// 留出 JSON 结构开销，保证截断后的响应一定能编码进一帧。
	DefaultMaxOutputSize = MaxPayloadSize - jsonOverhead
)

// messageType 帧类型。
type messageType uint8

const (
	// messageTypeRequest 请求帧（客户端 → 服务端）。
	messageTypeRequest messageType = 0x01

	// messageTypeResponse 响应帧（服务端 → 客户端）。
	messageTypeResponse messageType = 0x02
)

func (t messageType) String() string {
	switch t {
	case messageTypeRequest:
		return "request"
	case messageTypeResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Request 一次命令调用。
type Request struct {
	// Command 命令名。
	Command string `json:"command"`

	// Args 命令参数（不含命令名）。
	Args []string `json:"args,omitempty"`
}

// Response 一次命令调用的结果。
type Response struct {
	// OK 命令是否执行成功。
	OK bool `json:"ok"`

	// Output 命令输出（成功时）。
	Output string `json:"output,omitempty"`

	// Error 错误信息（失败时）。
	Error string `json:"error,omitempty"`

	// Truncated 输出是否因超过上限被截断。
	Truncated bool `json:"truncated,omitempty"`

	// OriginalSize 截断前的原始输出字节数（仅截断时有值）。
	OriginalSize int `json:"original_size,omitempty"`
}

// successResponse 构造成功响应，输出超限时安全截断。
func successResponse(output string, maxOutput int) *Response {
	if len(output) <= maxOutput {
		return &Response{OK: true, Output: output}
	}
	return &Response{
		OK:           true,
		Output:       truncateUTF8(output, maxOutput),
		Truncated:    true,
		OriginalSize: len(output),
	}
}

// errorResponse 构造错误响应。
func errorResponse(err error) *Response {
	return &Response{Error: err.Error()}
}
