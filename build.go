package tagotip

import (
	"fmt"
	"strings"
)

func writeValue(op Operator, v Value) string {
	switch op {
	case OperatorNumber:
		if v.Type != OperatorNumber {
			return ":="
		}
		return ":=" + v.Str
	case OperatorString:
		if v.Type != OperatorString {
			return "="
		}
		return "=" + v.Str
	case OperatorBoolean:
		if v.Type != OperatorBoolean {
			return "?="
		}
		if v.Bool {
			return "?=true"
		}
		return "?=false"
	case OperatorLocation:
		if v.Type != OperatorLocation || v.Location == nil {
			return "@="
		}
		loc := v.Location
		s := "@=" + loc.Lat + "," + loc.Lng
		if loc.Alt != nil {
			s += "," + *loc.Alt
		}
		return s
	}
	return "="
}

func writeMetaPairs(pairs []MetaPair) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	b.WriteByte('}')
	return b.String()
}

func writeVariable(v Variable) string {
	var b strings.Builder
	b.WriteString(v.Name)
	b.WriteString(writeValue(v.Operator, v.Value))
	if v.Unit != nil {
		b.WriteByte('#')
		b.WriteString(*v.Unit)
	}
	if v.Timestamp != nil {
		b.WriteByte('@')
		b.WriteString(*v.Timestamp)
	}
	if v.Group != nil {
		b.WriteByte('^')
		b.WriteString(*v.Group)
	}
	if len(v.Meta) > 0 {
		b.WriteString(writeMetaPairs(v.Meta))
	}
	return b.String()
}

func writePushBody(body *PushBody) string {
	if body.IsPassthrough && body.Passthrough != nil {
		pt := body.Passthrough
		prefix := ">x"
		if pt.Encoding == PassthroughEncodingBase64 {
			prefix = ">b"
		}
		return prefix + pt.Data
	}

	sb := body.Structured
	if sb == nil {
		return "[]"
	}

	var b strings.Builder
	if sb.Timestamp != nil {
		b.WriteByte('@')
		b.WriteString(*sb.Timestamp)
	}
	if sb.Group != nil {
		b.WriteByte('^')
		b.WriteString(*sb.Group)
	}
	if len(sb.Meta) > 0 {
		b.WriteString(writeMetaPairs(sb.Meta))
	}
	b.WriteByte('[')
	for i, v := range sb.Variables {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(writeVariable(v))
	}
	b.WriteByte(']')
	return b.String()
}

func writePullBody(body *PullBody) string {
	return "[" + strings.Join(body.Variables, ";") + "]"
}

// BuildUplink serializes an UplinkFrame into a raw frame string.
func BuildUplink(frame *UplinkFrame) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("tagotip: nil frame")
	}

	var parts []string

	switch frame.Method {
	case MethodPush:
		parts = append(parts, "PUSH")
	case MethodPull:
		parts = append(parts, "PULL")
	case MethodPing:
		parts = append(parts, "PING")
	}

	if frame.Seq != nil {
		parts = append(parts, fmt.Sprintf("!%d", *frame.Seq))
	}

	parts = append(parts, frame.Auth)
	parts = append(parts, frame.Serial)

	result := strings.Join(parts, "|")

	if frame.Method == MethodPush && frame.PushBody != nil {
		result += "|" + writePushBody(frame.PushBody)
	} else if frame.Method == MethodPull && frame.PullBody != nil {
		result += "|" + writePullBody(frame.PullBody)
	}

	return result, nil
}

// BuildAck serializes an AckFrame into a raw frame string.
func BuildAck(frame *AckFrame) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("tagotip: nil frame")
	}

	parts := []string{"ACK"}

	if frame.Seq != nil {
		parts = append(parts, fmt.Sprintf("!%d", *frame.Seq))
	}

	switch frame.Status {
	case AckStatusOk:
		parts = append(parts, "OK")
	case AckStatusPong:
		parts = append(parts, "PONG")
	case AckStatusCmd:
		parts = append(parts, "CMD")
	case AckStatusErr:
		parts = append(parts, "ERR")
	}

	if frame.Detail != nil {
		switch frame.Detail.Type {
		case "count":
			parts = append(parts, fmt.Sprintf("%d", frame.Detail.Count))
		case "variables":
			parts = append(parts, frame.Detail.Text)
		case "command":
			parts = append(parts, frame.Detail.Text)
		case "error":
			parts = append(parts, frame.Detail.Text)
		case "raw":
			parts = append(parts, frame.Detail.Text)
		}
	}

	return strings.Join(parts, "|"), nil
}

// BuildHeadless serializes a HeadlessFrame (the envelope's inner plaintext)
// into a raw string: "SERIAL|BODY" for Push, "SERIAL|[vars]" for Pull,
// "SERIAL" for Ping. Unlike BuildUplink, method/auth/seq are omitted —
// they live in the envelope header.
func BuildHeadless(method Method, frame *HeadlessFrame) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("tagotip: nil frame")
	}

	switch method {
	case MethodPush:
		if frame.PushBody == nil {
			return "", fmt.Errorf("tagotip: push frame missing body")
		}
		return frame.Serial + "|" + writePushBody(frame.PushBody), nil
	case MethodPull:
		if frame.PullBody == nil {
			return "", fmt.Errorf("tagotip: pull frame missing body")
		}
		return frame.Serial + "|" + writePullBody(frame.PullBody), nil
	case MethodPing:
		return frame.Serial, nil
	default:
		return "", fmt.Errorf("tagotip: unknown method")
	}
}

// BuildAckInner serializes the inner plaintext of an envelope-carried ACK:
// "STATUS[|DETAIL]", with no "ACK|" literal and no seq field.
func BuildAckInner(frame *AckFrame) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("tagotip: nil frame")
	}

	var parts []string
	switch frame.Status {
	case AckStatusOk:
		parts = append(parts, "OK")
	case AckStatusPong:
		parts = append(parts, "PONG")
	case AckStatusCmd:
		parts = append(parts, "CMD")
	case AckStatusErr:
		parts = append(parts, "ERR")
	}

	if frame.Detail != nil {
		switch frame.Detail.Type {
		case "count":
			parts = append(parts, fmt.Sprintf("%d", frame.Detail.Count))
		case "variables", "command", "error", "raw":
			parts = append(parts, frame.Detail.Text)
		}
	}

	return strings.Join(parts, "|"), nil
}

// ---------------------------------------------------------------------------
// Buffer-writing variants (embedded-style: caller owns the output buffer)
// ---------------------------------------------------------------------------

// ErrBufferTooSmall is returned by the *Into builders when out is not large
// enough to hold the serialized frame.
var ErrBufferTooSmall = fail(ErrBufferTooSmallKind, 0)

func writeInto(out []byte, s string) (int, error) {
	if len(s) > len(out) {
		return 0, ErrBufferTooSmall
	}
	return copy(out, s), nil
}

// BuildUplinkInto serializes frame into out, returning the number of bytes
// written or ErrBufferTooSmall if out is not large enough.
func BuildUplinkInto(frame *UplinkFrame, out []byte) (int, error) {
	s, err := BuildUplink(frame)
	if err != nil {
		return 0, err
	}
	return writeInto(out, s)
}

// BuildAckInto serializes frame into out, returning the number of bytes
// written or ErrBufferTooSmall if out is not large enough.
func BuildAckInto(frame *AckFrame, out []byte) (int, error) {
	s, err := BuildAck(frame)
	if err != nil {
		return 0, err
	}
	return writeInto(out, s)
}

// BuildHeadlessInto serializes frame into out, returning the number of
// bytes written or ErrBufferTooSmall if out is not large enough.
func BuildHeadlessInto(method Method, frame *HeadlessFrame, out []byte) (int, error) {
	s, err := BuildHeadless(method, frame)
	if err != nil {
		return 0, err
	}
	return writeInto(out, s)
}

// BuildAckInnerInto serializes frame into out, returning the number of
// bytes written or ErrBufferTooSmall if out is not large enough.
func BuildAckInnerInto(frame *AckFrame, out []byte) (int, error) {
	s, err := BuildAckInner(frame)
	if err != nil {
		return 0, err
	}
	return writeInto(out, s)
}
