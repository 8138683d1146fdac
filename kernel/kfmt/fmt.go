// Package kfmt implements the formatted output helpers used by the kernel
// before and after the console becomes available.
package kfmt

import "io"

const (
	// numBufSize is the size of the scratch buffer used for formatting
	// numbers. It fits a 64-bit value in base 8 plus the sign.
	numBufSize = 24

	// outBufSize is the size of the buffer that collects formatted output
	// before it is handed to the sink.
	outBufSize = 128
)

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	// earlyPrintBuffer captures Printf output until an output sink is
	// attached.
	earlyPrintBuffer ringBuffer

	// outputSink receives the output of Printf. When nil, output goes to
	// earlyPrintBuffer.
	outputSink io.Writer

	// Scratch space shared by all Fprintf calls. The kernel prints from a
	// single thread and sinks must not call back into kfmt.
	numBuf [numBufSize]byte
	outBuf [outBufSize]byte
)

// SetOutputSink sets the target for calls to Printf to w and replays any
// output that was buffered while no sink was attached.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// Printf writes formatted output to the active output sink. It supports a
// subset of the fmt verbs:
//
//	%s string or []byte, left-padded with spaces to the requested width
//	%d base 10 integer, left-padded with spaces
//	%x base 16 integer (lower-case), left-padded with zeroes
//	%o base 8 integer, left-padded with zeroes
//	%c a single byte or rune below 0x80
//	%t "true" or "false"
//	%% a literal percent sign
//
// Arguments are matched by type switch only; Printf never consults
// fmt.Stringer.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes to w. A nil w writes to the early
// print buffer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		p       = printer{w: w}
		argIdx  int
		litFrom int
	)

	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}

		p.writeString(format[litFrom:i])

		width := 0
		for i++; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}

		litFrom = i + 1
		if i >= len(format) {
			p.write(errNoVerb)
			break
		}

		verb := format[i]
		if verb == '%' {
			p.writeByte('%')
			continue
		}

		if !isVerb(verb) {
			p.write(errNoVerb)
			continue
		}

		if argIdx >= len(args) {
			p.write(errMissingArg)
			continue
		}

		p.printArg(verb, args[argIdx], width)
		argIdx++
	}

	if litFrom < len(format) {
		p.writeString(format[litFrom:])
	}

	for ; argIdx < len(args); argIdx++ {
		p.write(errExtraArg)
	}

	p.flush()
}

func isVerb(ch byte) bool {
	switch ch {
	case 's', 'd', 'x', 'o', 'c', 't':
		return true
	}
	return false
}

// printer holds the per-call formatting state. Output is collected in outBuf
// and reaches w once per Fprintf call, or each time outBuf fills up.
type printer struct {
	w io.Writer
	n int
}

// flush hands the buffered output to the sink.
func (p *printer) flush() {
	if p.n == 0 {
		return
	}

	if p.w != nil {
		p.w.Write(outBuf[:p.n])
	} else {
		earlyPrintBuffer.Write(outBuf[:p.n])
	}
	p.n = 0
}

func (p *printer) write(b []byte) {
	for len(b) > 0 {
		if p.n == len(outBuf) {
			p.flush()
		}
		copied := copy(outBuf[p.n:], b)
		p.n += copied
		b = b[copied:]
	}
}

func (p *printer) writeByte(b byte) {
	if p.n == len(outBuf) {
		p.flush()
	}
	outBuf[p.n] = b
	p.n++
}

func (p *printer) writeString(s string) {
	for len(s) > 0 {
		if p.n == len(outBuf) {
			p.flush()
		}
		copied := copy(outBuf[p.n:], s)
		p.n += copied
		s = s[copied:]
	}
}

func (p *printer) pad(ch byte, count int) {
	for ; count > 0; count-- {
		p.writeByte(ch)
	}
}

func (p *printer) printArg(verb byte, arg interface{}, width int) {
	switch verb {
	case 's':
		switch v := arg.(type) {
		case string:
			p.pad(' ', width-len(v))
			p.writeString(v)
		case []byte:
			p.pad(' ', width-len(v))
			p.write(v)
		default:
			p.write(errWrongArgType)
		}
	case 't':
		v, ok := arg.(bool)
		switch {
		case !ok:
			p.write(errWrongArgType)
		case v:
			p.write(trueValue)
		default:
			p.write(falseValue)
		}
	case 'c':
		switch v := arg.(type) {
		case byte:
			p.writeByte(v)
		case rune:
			if v < 0 || v >= 0x80 {
				p.writeByte('?')
			} else {
				p.writeByte(byte(v))
			}
		default:
			p.write(errWrongArgType)
		}
	case 'd':
		p.printInt(arg, 10, width, ' ')
	case 'x':
		p.printInt(arg, 16, width, '0')
	case 'o':
		p.printInt(arg, 8, width, '0')
	}
}

// printInt formats a built-in integer value in the requested base. Negative
// values are prefixed with '-'; zero padding is inserted after the sign so
// that "%4x" of -0xa renders as "-00a".
func (p *printer) printInt(arg interface{}, base uint64, width int, padCh byte) {
	var (
		mag uint64
		neg bool
	)

	switch v := arg.(type) {
	case uint8:
		mag = uint64(v)
	case uint16:
		mag = uint64(v)
	case uint32:
		mag = uint64(v)
	case uint64:
		mag = v
	case uint:
		mag = uint64(v)
	case uintptr:
		mag = uint64(v)
	case int8:
		mag, neg = abs(int64(v))
	case int16:
		mag, neg = abs(int64(v))
	case int32:
		mag, neg = abs(int64(v))
	case int64:
		mag, neg = abs(v)
	case int:
		mag, neg = abs(int64(v))
	default:
		p.write(errWrongArgType)
		return
	}

	// Digits are produced right-to-left at the end of numBuf.
	pos := len(numBuf)
	for {
		pos--
		digit := byte(mag % base)
		if digit < 10 {
			numBuf[pos] = '0' + digit
		} else {
			numBuf[pos] = 'a' + digit - 10
		}

		mag /= base
		if mag == 0 {
			break
		}
	}

	digits := len(numBuf) - pos
	padLen := width - digits
	if neg {
		padLen--
	}

	if padCh == ' ' {
		p.pad(' ', padLen)
		if neg {
			p.writeByte('-')
		}
	} else {
		if neg {
			p.writeByte('-')
		}
		p.pad('0', padLen)
	}

	p.write(numBuf[pos:])
}

func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}
