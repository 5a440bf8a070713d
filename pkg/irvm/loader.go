package irvm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Opcode identifies one IR instruction form.
type Opcode int

const (
	OpAlloca Opcode = iota
	OpStore
	OpLoad
	OpAdd
	OpSub
	OpMul
	OpSDiv
	OpICmp
	OpBr
	OpCondBr
	OpCall
	OpRet
)

var opcodeNames = [...]string{
	OpAlloca: "alloca",
	OpStore:  "store",
	OpLoad:   "load",
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpSDiv:   "sdiv",
	OpICmp:   "icmp",
	OpBr:     "br",
	OpCondBr: "br",
	OpCall:   "call",
	OpRet:    "ret",
}

func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

var arithOps = map[string]Opcode{
	"add":  OpAdd,
	"sub":  OpSub,
	"mul":  OpMul,
	"sdiv": OpSDiv,
}

var predicates = map[string]bool{
	"eq": true, "ne": true, "sgt": true, "sge": true, "slt": true, "sle": true,
}

// Instr is one decoded instruction. Args hold operands as written in the IR:
// register names ("%tmp.3"), slot names ("%x"), labels or integer literals.
type Instr struct {
	Op   Opcode
	Dst  string   // defined register, empty for store/br/call/ret
	Pred string   // icmp predicate
	Args []string // operands
	Line int      // 1-based line in the IR text
}

// Block is a labeled straight-line run of instructions.
type Block struct {
	Label  string
	Instrs []Instr
}

// Program is a loaded @main function plus the module's string constants.
type Program struct {
	Blocks  []*Block
	Globals map[string]string // "@print.str" -> decoded bytes without the NUL

	labels map[string]int
}

// BlockIndex returns the index of the block with the given label.
func (p *Program) BlockIndex(label string) (int, bool) {
	i, ok := p.labels[label]
	return i, ok
}

var (
	globalRe = regexp.MustCompile(`^(@[\w.]+)\s*=.*constant\s+\[\d+ x i8\]\s+c"(.*)"$`)
	callRe   = regexp.MustCompile(`^call i32 \(ptr, \.\.\.\) (@[\w.]+)\((.*)\)$`)
	labelRe  = regexp.MustCompile(`^([A-Za-z_.$][\w.$-]*):$`)
)

// Load decodes IR text into a Program. It accepts the subset of IR the
// compiler emits: one @main function over i32 values and ptr slots.
func Load(ir string) (*Program, error) {
	prog := &Program{
		Globals: make(map[string]string),
		labels:  make(map[string]int),
	}

	inMain := false
	var cur *Block
	newBlock := func(label string, lineNo int) error {
		if _, exists := prog.labels[label]; exists {
			return fmt.Errorf("duplicate label '%s' on line %d", label, lineNo)
		}
		cur = &Block{Label: label}
		prog.labels[label] = len(prog.Blocks)
		prog.Blocks = append(prog.Blocks, cur)
		return nil
	}

	for i, raw := range strings.Split(ir, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		if !inMain {
			switch {
			case strings.HasPrefix(line, "declare "):
			case strings.HasPrefix(line, "@"):
				m := globalRe.FindStringSubmatch(line)
				if m == nil {
					return nil, fmt.Errorf("invalid global on line %d", lineNo)
				}
				s, err := decodeCString(m[2])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				prog.Globals[m[1]] = s
			case strings.HasPrefix(line, "define i32 @main()"):
				inMain = true
				if err := newBlock("", lineNo); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("unexpected top-level text on line %d: %q", lineNo, line)
			}
			continue
		}

		if line == "}" {
			inMain = false
			continue
		}

		if m := labelRe.FindStringSubmatch(line); m != nil {
			if err := newBlock(m[1], lineNo); err != nil {
				return nil, err
			}
			continue
		}

		in, err := parseInstr(line, lineNo)
		if err != nil {
			return nil, err
		}
		cur.Instrs = append(cur.Instrs, in)
	}

	if len(prog.Blocks) == 0 {
		return nil, fmt.Errorf("no @main function")
	}
	if inMain {
		return nil, fmt.Errorf("@main is not closed")
	}
	return prog, nil
}

func stripComment(line string) string {
	// ';' inside a c"..." constant is data, not a comment.
	if strings.Contains(line, `c"`) {
		return line
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.NewReplacer(",", " ").Replace(line)
}

func parseInstr(line string, lineNo int) (Instr, error) {
	in := Instr{Line: lineNo}

	if strings.HasPrefix(line, "call ") {
		m := callRe.FindStringSubmatch(line)
		if m == nil {
			return in, fmt.Errorf("invalid call on line %d", lineNo)
		}
		in.Op = OpCall
		in.Args = append(in.Args, m[1])
		for _, arg := range strings.Split(m[2], ",") {
			fields := strings.Fields(arg)
			if len(fields) != 2 {
				return in, fmt.Errorf("invalid call argument %q on line %d", arg, lineNo)
			}
			in.Args = append(in.Args, fields[1])
		}
		return in, nil
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) >= 2 && fields[1] == "=" {
		in.Dst = fields[0]
		fields = fields[2:]
	}
	if len(fields) == 0 {
		return in, fmt.Errorf("missing instruction on line %d", lineNo)
	}

	bad := func() (Instr, error) {
		return in, fmt.Errorf("malformed %s on line %d: %q", fields[0], lineNo, line)
	}

	mnemonic := fields[0]
	if op, ok := arithOps[mnemonic]; ok {
		// OP i32 A B
		if in.Dst == "" || len(fields) != 4 || fields[1] != "i32" {
			return bad()
		}
		in.Op = op
		in.Args = []string{fields[2], fields[3]}
		return in, nil
	}

	switch mnemonic {
	case "alloca":
		// alloca i32
		if in.Dst == "" || len(fields) != 2 || fields[1] != "i32" {
			return bad()
		}
		in.Op = OpAlloca

	case "store":
		// store i32 V ptr P
		if in.Dst != "" || len(fields) != 5 || fields[1] != "i32" || fields[3] != "ptr" {
			return bad()
		}
		in.Op = OpStore
		in.Args = []string{fields[2], fields[4]}

	case "load":
		// load i32 ptr P
		if in.Dst == "" || len(fields) != 4 || fields[1] != "i32" || fields[2] != "ptr" {
			return bad()
		}
		in.Op = OpLoad
		in.Args = []string{fields[3]}

	case "icmp":
		// icmp PRED i32 A B
		if in.Dst == "" || len(fields) != 5 || !predicates[fields[1]] || fields[2] != "i32" {
			return bad()
		}
		in.Op = OpICmp
		in.Pred = fields[1]
		in.Args = []string{fields[3], fields[4]}

	case "br":
		switch {
		case len(fields) == 3 && fields[1] == "label":
			in.Op = OpBr
			in.Args = []string{labelName(fields[2])}
		case len(fields) == 7 && fields[1] == "i1" && fields[3] == "label" && fields[5] == "label":
			in.Op = OpCondBr
			in.Args = []string{fields[2], labelName(fields[4]), labelName(fields[6])}
		default:
			return bad()
		}

	case "ret":
		// ret i32 V
		if len(fields) != 3 || fields[1] != "i32" {
			return bad()
		}
		in.Op = OpRet
		in.Args = []string{fields[2]}

	default:
		return in, fmt.Errorf("unknown instruction %q on line %d", mnemonic, lineNo)
	}
	return in, nil
}

func labelName(operand string) string {
	return strings.TrimPrefix(operand, "%")
}

// decodeCString turns the body of an IR c"..." constant into its bytes,
// dropping the trailing NUL.
func decodeCString(body string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			sb.WriteByte(body[i])
			continue
		}
		if i+2 >= len(body) {
			return "", fmt.Errorf("truncated escape in c%q", body)
		}
		b, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid escape \\%s in string constant", body[i+1:i+3])
		}
		sb.WriteByte(byte(b))
		i += 2
	}
	return strings.TrimSuffix(sb.String(), "\x00"), nil
}
