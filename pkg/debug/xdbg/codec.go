package xdbg

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"
)

// Codec 负责帧的编解码。无状态，可在多个连接间共享。
type Codec struct{}

// NewCodec 创建编解码器。
func NewCodec() *Codec {
	return &Codec{}
}

// EncodeRequest 编码请求帧。
func (c *Codec) EncodeRequest(req *Request) ([]byte, error) {
	return c.encode(messageTypeRequest, req)
}

// EncodeResponse 编码响应帧。
func (c *Codec) EncodeResponse(resp *Response) ([]byte, error) {
	return c.encode(messageTypeResponse, resp)
}

func (c *Codec) encode(msgType messageType, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("xdbg: marshal payload: %w", err)
	}
	if len(body) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: payload %d bytes", ErrMessageTooLarge, len(body))
	}

	frame := make([]byte, headerSize+len(body))
	binary.BigEndian.PutUint16(frame[0:2], protocolMagic)
	frame[2] = protocolVersion
	frame[3] = byte(msgType)
	binary.BigEndian.PutUint32(frame[4:8], uint32(len(body)))
	copy(frame[headerSize:], body)
	return frame, nil
}

// DecodeRequest 从 r 读取并解析一个请求帧。
func (c *Codec) DecodeRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := c.decode(r, messageTypeRequest, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeResponse 从 r 读取并解析一个响应帧。
func (c *Codec) DecodeResponse(r io.Reader) (*Response, error) {
	var resp Response
	if err := c.decode(r, messageTypeResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Codec) decode(r io.Reader, want messageType, target any) error {
	got, length, err := c.readHeader(r)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: expected %s frame, got %s", ErrInvalidMessage, want, got)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("xdbg: read payload: %w", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return nil
}

// readHeader 读取并校验帧头，返回帧类型与 payload 长度。
// 对端正常断开（头部第一个字节就 EOF）映射为 [ErrConnectionClosed]。
func (c *Codec) readHeader(r io.Reader) (messageType, uint32, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return 0, 0, ErrConnectionClosed
		}
		return 0, 0, fmt.Errorf("xdbg: read header: %w", err)
	}

	if binary.BigEndian.Uint16(header[0:2]) != protocolMagic {
		return 0, 0, fmt.Errorf("%w: bad magic", ErrInvalidMessage)
	}
	if header[2] != protocolVersion {
		return 0, 0, fmt.Errorf("%w: unsupported version %d", ErrInvalidMessage, header[2])
	}

	length := binary.BigEndian.Uint32(header[4:8])
	if length > MaxPayloadSize {
		return 0, 0, fmt.Errorf("%w: payload %d bytes", ErrMessageTooLarge, length)
	}
	return messageType(header[3]), length, nil
}

// truncateUTF8 按字节数截断字符串，回退到最近的 UTF-8 边界，
// 不产生半个多字节字符。
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
