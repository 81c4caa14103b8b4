package tagotip

import "strings"

// ParseHeadless parses the inner plaintext frame carried inside a
// TagoTiP/S envelope. Headless frames omit the "METHOD|SEQ|AUTH" prefix —
// those fields live in the envelope header and counter — so the caller
// (which already decrypted the envelope and therefore knows the method
// from the flags byte) must supply it.
func ParseHeadless(method Method, input string) (*HeadlessFrame, error) {
	return ParseHeadlessWithLimits(method, input, DefaultLimits())
}

// ParseHeadlessWithLimits is ParseHeadless with caller-supplied Limits.
func ParseHeadlessWithLimits(method Method, input string, limits Limits) (*HeadlessFrame, error) {
	if strings.ContainsRune(input, '\x00') {
		return nil, fail(ErrNulByte, 0)
	}
	if len(input) > limits.MaxFrameSize {
		return nil, fail(ErrFrameTooLarge, 0)
	}

	stripped := input
	if len(stripped) > 0 && stripped[len(stripped)-1] == '\n' {
		stripped = stripped[:len(stripped)-1]
	}
	fields := splitFields(stripped)

	if len(fields) == 0 || len(fields[0]) == 0 {
		return nil, fail(ErrEmptyFrame, 0)
	}

	serial := fields[0]
	if err := validateSerial(serial, 0, limits.MaxSerialLen); err != nil {
		return nil, err
	}

	frame := &HeadlessFrame{Serial: serial}
	bodyPos := len(serial) + 1
	totalMeta := 0

	switch method {
	case MethodPush:
		if len(fields) < 2 {
			return nil, fail(ErrMissingBody, bodyPos)
		}
		pb, err := parsePushBody(fields[1], bodyPos, limits, &totalMeta)
		if err != nil {
			return nil, err
		}
		frame.PushBody = pb
	case MethodPull:
		if len(fields) < 2 {
			return nil, fail(ErrMissingBody, bodyPos)
		}
		pb, err := parsePullBody(fields[1], bodyPos, limits)
		if err != nil {
			return nil, err
		}
		frame.PullBody = pb
	case MethodPing:
		if len(fields) > 1 && len(fields[1]) > 0 {
			return nil, fail(ErrInvalidField, bodyPos)
		}
	default:
		return nil, fail(ErrInvalidMethod, 0)
	}

	return frame, nil
}

// ParseAckInner parses the inner plaintext ACK carried inside a TagoTiP/S
// envelope: "STATUS[|DETAIL]", with no "ACK|" literal and no independent
// seq field (the envelope counter already carries sequencing).
func ParseAckInner(input string) (*AckFrame, error) {
	stripped := input
	if len(stripped) > 0 && stripped[len(stripped)-1] == '\n' {
		stripped = stripped[:len(stripped)-1]
	}
	fields := splitFields(stripped)

	if len(fields) == 0 || len(fields[0]) == 0 {
		return nil, fail(ErrInvalidAck, 0)
	}

	status, err := parseAckStatus(fields[0])
	if err != nil {
		return nil, err
	}

	var detail *AckDetail
	if len(fields) > 1 {
		detail = parseAckDetail(fields[1], status)
	}

	return &AckFrame{Status: status, Detail: detail}, nil
}
