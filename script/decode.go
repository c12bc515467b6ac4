package script

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"

	"github.com/ark-network/ark-sdk-go/arkerrors"
)

// DecodeTapscript pattern-matches script against the known Ark leaf shapes
// and returns the decoded Tapscript. Ambiguous or malformed scripts are
// rejected rather than guessed at.
func DecodeTapscript(raw []byte) (*Tapscript, error) {
	tokens, err := tokenize(raw)
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "script.DecodeTapscript", err)
	}

	ts, rest, err := decodeWrapper(raw, tokens)
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "script.DecodeTapscript", err)
	}
	if len(rest) != 0 {
		return nil, arkerrors.New(arkerrors.ProtocolError, "script.DecodeTapscript",
			fmt.Errorf("trailing %d unparsed opcodes", len(rest)))
	}
	ts.RawScript = raw
	return ts, nil
}

// token is one parsed script element: either a data push or a bare opcode,
// plus its byte offset into the raw script so wrappers carrying an opaque
// prefix (condition multisig) can slice it back out.
type token struct {
	opcode byte
	data   []byte
	isData bool
	start  int
}

func tokenize(script []byte) ([]token, error) {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	var out []token
	start := 0
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		t := token{opcode: op, start: start}
		if data := tokenizer.Data(); data != nil || isPushOpcode(op) {
			t.data = tokenizer.Data()
			t.isData = true
		}
		out = append(out, t)
		start = int(tokenizer.ByteIndex())
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isPushOpcode(op byte) bool {
	return op <= txscript.OP_PUSHDATA4 && op != txscript.OP_RESERVED
}

// decodeWrapper peels off an outer hashlock or CSV/CLTV-and-drop wrapper,
// recursing into the inner closure, then tries a condition-prefixed
// multisig before falling back to a bare multisig.
func decodeWrapper(raw []byte, tokens []token) (*Tapscript, []token, error) {
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("empty script")
	}

	// OP_SHA256 <32-byte> OP_EQUALVERIFY <rest>. A partial prefix match
	// falls through: the same opcodes may open a condition script.
	if len(tokens) >= 3 && tokens[0].opcode == txscript.OP_SHA256 &&
		tokens[1].isData && len(tokens[1].data) == 32 &&
		tokens[2].opcode == txscript.OP_EQUALVERIFY {
		inner, rest, err := decodeWrapper(raw, tokens[3:])
		if err != nil {
			return nil, nil, fmt.Errorf("hashlock inner: %w", err)
		}
		ts := &Tapscript{Kind: KindHashlock160, Inner: inner}
		copy(ts.HashImage[:], tokens[1].data)
		return ts, rest, nil
	}

	// <value> OP_CSV OP_DROP <rest>
	if len(tokens) >= 3 && tokens[1].opcode == txscript.OP_CHECKSEQUENCEVERIFY &&
		tokens[2].opcode == txscript.OP_DROP {
		val, err := scriptNumValue(tokens[0])
		if err != nil {
			return nil, nil, fmt.Errorf("csv value: %w", err)
		}
		inner, rest, err := decodeMultisig(tokens[3:])
		if err != nil {
			return nil, nil, fmt.Errorf("csv inner: %w", err)
		}
		unit := UnitBlocks
		locktime := val
		if val&csvSecondsFlag != 0 {
			unit = UnitSeconds
			locktime = (val & 0xffff) << 9
		}
		inner.Kind = KindCSVMultisig
		inner.Locktime = locktime
		inner.Unit = unit
		return inner, rest, nil
	}

	// <value> OP_CLTV OP_DROP <rest>
	if len(tokens) >= 3 && tokens[1].opcode == txscript.OP_CHECKLOCKTIMEVERIFY &&
		tokens[2].opcode == txscript.OP_DROP {
		val, err := scriptNumValue(tokens[0])
		if err != nil {
			return nil, nil, fmt.Errorf("cltv value: %w", err)
		}
		inner, rest, err := decodeMultisig(tokens[3:])
		if err != nil {
			return nil, nil, fmt.Errorf("cltv inner: %w", err)
		}
		unit := UnitBlocks
		if val >= cltvThreshold {
			unit = UnitSeconds
		}
		inner.Kind = KindCLTVMultisig
		inner.Locktime = val
		inner.Unit = unit
		return inner, rest, nil
	}

	// <condition> OP_VERIFY <multisig>. A multisig tail never contains
	// OP_VERIFY, so the last one in the stream is the separator; the
	// condition is kept as opaque raw bytes.
	if idx := lastOpcodeIndex(tokens, txscript.OP_VERIFY); idx > 0 {
		inner, rest, err := decodeMultisig(tokens[idx+1:])
		if err != nil {
			return nil, nil, fmt.Errorf("condition inner: %w", err)
		}
		inner.Kind = KindConditionMultisig
		inner.Condition = raw[tokens[0].start:tokens[idx].start]
		return inner, rest, nil
	}

	return decodeMultisig(tokens)
}

func lastOpcodeIndex(tokens []token, opcode byte) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		if !tokens[i].isData && tokens[i].opcode == opcode {
			return i
		}
	}
	return -1
}

// decodeMultisig parses <pub> OP_CHECKSIG (<pub> OP_CHECKSIGADD)* <n>
// OP_NUMEQUAL and returns the tokens that follow OP_NUMEQUAL, which the
// caller rejects if any remain.
func decodeMultisig(tokens []token) (*Tapscript, []token, error) {
	if len(tokens) < 3 {
		return nil, nil, fmt.Errorf("too short for multisig")
	}
	if !tokens[0].isData || len(tokens[0].data) != 32 {
		return nil, nil, fmt.Errorf("expected 32-byte pubkey push")
	}

	var pubkeys []*btcec.PublicKey
	pub, err := btcec.ParsePubKey(append([]byte{0x02}, tokens[0].data...))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid pubkey: %w", err)
	}
	pubkeys = append(pubkeys, pub)

	idx := 1
	if tokens[idx].opcode != txscript.OP_CHECKSIG {
		return nil, nil, fmt.Errorf("expected OP_CHECKSIG after first pubkey")
	}
	idx++

	for idx+1 < len(tokens) && tokens[idx].isData && len(tokens[idx].data) == 32 {
		pub, err := btcec.ParsePubKey(append([]byte{0x02}, tokens[idx].data...))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pubkey: %w", err)
		}
		if tokens[idx+1].opcode != txscript.OP_CHECKSIGADD {
			break
		}
		pubkeys = append(pubkeys, pub)
		idx += 2
	}

	if idx >= len(tokens) {
		return nil, nil, fmt.Errorf("missing threshold/NUMEQUAL")
	}
	threshold, err := scriptNumValue(tokens[idx])
	if err != nil {
		return nil, nil, fmt.Errorf("threshold value: %w", err)
	}
	idx++
	if idx >= len(tokens) || tokens[idx].opcode != txscript.OP_NUMEQUAL {
		return nil, nil, fmt.Errorf("expected OP_NUMEQUAL")
	}
	idx++

	if threshold < 1 || int(threshold) > len(pubkeys) {
		return nil, nil, fmt.Errorf("threshold %d out of range for %d keys", threshold, len(pubkeys))
	}

	return &Tapscript{
		Kind:      KindMultisig,
		Threshold: int(threshold),
		Pubkeys:   pubkeys,
	}, tokens[idx:], nil
}

func scriptNumValue(t token) (int64, error) {
	if t.isData {
		n, err := txscript.MakeScriptNum(t.data, true, 5)
		if err != nil {
			return 0, err
		}
		return int64(n), nil
	}
	if t.opcode >= txscript.OP_1 && t.opcode <= txscript.OP_16 {
		return int64(t.opcode-txscript.OP_1) + 1, nil
	}
	if t.opcode == txscript.OP_0 {
		return 0, nil
	}
	return 0, fmt.Errorf("opcode %d is not a script number", t.opcode)
}
