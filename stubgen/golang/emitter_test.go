package golang

import (
	"context"
	"go/parser"
	"go/token"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/callgen/descriptor"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/stubgen"
)

var defaults = stubgen.Options{DefaultInputFormat: "json", DefaultOutputFormat: "json"}

func emit(t *testing.T, name string, opts stubgen.EmitOptions) map[string]string {
	t.Helper()
	d, err := descriptor.Load("../../descriptor/testdata/" + name)
	require.NoError(t, err)
	result := stubgen.GenerateInterface(context.Background(), d, defaults)
	require.NoError(t, result.Err())

	files, err := stubgen.Emit(result, opts, New())
	require.NoError(t, err)

	out := map[string]string{}
	for _, f := range files {
		_, err := parser.ParseFile(token.NewFileSet(), f.Path, f.Content, parser.ParseComments)
		require.NoError(t, err, "%s must parse", f.Path)
		out[f.Path] = string(f.Content)
	}
	return out
}

// matches asserts a pattern where every run of spaces may be any
// whitespace, so gofmt alignment does not matter.
func matches(t *testing.T, src, pattern string) {
	t.Helper()
	re := regexp.MustCompile(regexp.MustCompile(` +`).ReplaceAllString(regexp.QuoteMeta(pattern), `\s+`))
	assert.Regexp(t, re, src)
}

func TestEmitMessage(t *testing.T) {
	files := emit(t, "message.yaml", stubgen.EmitOptions{
		Source:      "message.yaml",
		Fingerprint: "fp",
		Version:     "v0.1.0",
		CallOut:     true,
		WasmExports: true,
	})
	require.Len(t, files, 3)

	src := files["message/message_gen.go"]
	require.NotEmpty(t, src)
	assert.Contains(t, src, "// Code generated by callgen. DO NOT EDIT.")
	assert.Contains(t, src, "// Generator version: v0.1.0")
	assert.Contains(t, src, "package message")

	assert.Contains(t, src, "type Message interface {")
	assert.Contains(t, src, "MethodA(myString string)\n")
	assert.Contains(t, src, "MethodB(myString string, myBool bool) bool")

	assert.Contains(t, src, "type MessageMethodBReceiver[State any] interface {")
	assert.Contains(t, src, "type MessageMethodBCalledIn[State MessageMethodBReceiver[State]] struct {")
	assert.Contains(t, src, "type MessageMethodBArgs[State MessageMethodBReceiver[State]] struct {")
	assert.Contains(t, src, "type MessageMethodBReturn[State MessageMethodBReceiver[State]] struct {")
	matches(t, src, "_ MessageMethodBCalledIn[State] `json:\"-\" msgpack:\"-\"`")
	matches(t, src, "MyString string `json:\"my_string\" msgpack:\"my_string\"`")
	matches(t, src, "MyBool bool `json:\"my_bool\" msgpack:\"my_bool\"`")
	matches(t, src, "Value bool")

	// method_a forwards the doc and validate attributes
	assert.Contains(t, src, "// The message body.")
	matches(t, src, "MyString string `json:\"my_string\" msgpack:\"my_string\" validate:\"required\"`")
	matches(t, src, "Value dispatch.Unit")

	assert.Contains(t, src, "return MessageMethodBReturn[State]{Value: state.MethodB(args.MyString, args.MyBool)}, true")
	assert.Contains(t, src, "state.MethodA(args.MyString)\n")
	assert.Contains(t, src, "return MessageMethodAReturn[State]{}, false")

	assert.Contains(t, src, "func MethodB(cc *dispatch.CallContext) {")
	assert.Contains(t, src, "dispatch.Expose(cc, MessageMethodBCalledIn[*Contract]{}.Binding())")
	assert.Contains(t, src, "func RegisterContract(r *dispatch.Registry) error {")
	matches(t, src, `dispatch.Entry{Name: "method_a", Func: MethodA},`)

	wasm := files["message/message_wasm_gen.go"]
	assert.Regexp(t, `^//go:build wasip1\n`, wasm)
	assert.Contains(t, wasm, "//go:wasmexport method_b\nfunc wasmMethodB() { guest.Run(\"method_b\", MethodB) }")

	call := files["message/message_callout_gen.go"]
	assert.Contains(t, call, "func CallMethodB(target string, myString string, myBool bool) (*callout.Pending[bool], error) {")
	assert.Contains(t, call, `callout.Build[bool](target, "method_b", format.JSON, format.JSON, MessageMethodBCall{MyString: myString, MyBool: myBool})`)
	assert.Contains(t, call, "(*callout.Pending[dispatch.Unit], error)")
}

func TestEmitLedgerSharesOneLedger(t *testing.T) {
	files := emit(t, "ledger.yaml", stubgen.EmitOptions{CallOut: true})
	src := files["ledger/ledger_gen.go"]
	require.NotEmpty(t, src)

	params := "[State LedgerTransferReceiver[State, tx, call, Amount, Memo, Strict], tx dispatch.Region, call dispatch.Region, Amount Number, Memo any, Strict dispatch.Const[bool]]"
	for _, name := range []string{"LedgerTransferCalledIn", "LedgerTransferArgs", "LedgerTransferReturn"} {
		assert.Contains(t, src, "type "+name+params+" struct {", name)
	}
	args := "[State, tx, call, Amount, Memo, Strict]"
	assert.Contains(t, src, "dispatch.Binding[State, LedgerTransferArgs"+args+", LedgerTransferReturn"+args+"]")

	assert.Contains(t, src, "type Ledger[tx dispatch.Region, Amount Number, Strict dispatch.Const[bool]] interface {")
	assert.Contains(t, src, "Balance(account string) Amount")
	assert.Contains(t, src, "type LedgerTransferCapability[tx dispatch.Region, call dispatch.Region, Amount Number, Memo any, Strict dispatch.Const[bool]] interface {")
	assert.Contains(t, src, "Transfer(to string, amount Amount, memo *Memo) Amount")
	assert.Contains(t, src, "// Region call outlives tx.\ntype LedgerTransferReceiver[State any, tx dispatch.Region, call dispatch.Region, Amount Number, Memo any, Strict dispatch.Const[bool]] interface {")
	assert.Contains(t, src, "\tLedger[tx, Amount, Strict]\n\tLedgerTransferCapability[tx, call, Amount, Memo, Strict]\n\tfmt.Stringer\n")

	for _, marker := range []string{"State", "tx", "call", "Amount", "Memo"} {
		assert.Contains(t, src, "_ [0]"+marker+"\n")
	}
	assert.NotContains(t, src, "_ [0]Strict")

	assert.Contains(t, src, "state.Transfer(args.To, args.Amount, &args.Memo)")
	matches(t, src, "Input: format.Msgpack,")
	matches(t, src, "Receiver: dispatch.ReceiverStateless,")
	assert.Contains(t, src, "LedgerTransferCalledIn[*Book, dispatch.Static, dispatch.Static, int64, string, dispatch.True]{}.Binding()")
	assert.Contains(t, src, "func LedgerVersion(cc *dispatch.CallContext) {")
	assert.Contains(t, src, `"fmt"`)

	call := files["ledger/ledger_callout_gen.go"]
	assert.Contains(t, call, "func CallTransfer[Amount Number, Memo any](target string, to string, amount Amount, memo Memo) (*callout.Pending[Amount], error) {")
	assert.Contains(t, call, "type LedgerTransferCall[Amount Number, Memo any] struct {")
	assert.Contains(t, call, `callout.Build[string](target, "ledger_version", format.JSON, format.JSON, LedgerVersionCall{})`)
	assert.Contains(t, call, `callout.Build[Amount](target, "transfer", format.Msgpack, format.Msgpack, LedgerTransferCall[`)
	assert.NotContains(t, files, "ledger/ledger_wasm_gen.go")
}

func TestEmitRefusesPartialResult(t *testing.T) {
	d, err := descriptor.Load("../../descriptor/testdata/message.yaml")
	require.NoError(t, err)
	d.Methods[1].Args[0].Name = "(a, b)"

	result := stubgen.GenerateInterface(context.Background(), d, defaults)
	files, err := stubgen.Emit(result, stubgen.EmitOptions{}, New())
	require.Error(t, err)
	assert.Nil(t, files)
	assert.True(t, errors.Is(err, errors.UnsupportedArgumentPattern))
}

func TestEmitRejectsCollidingEntryPoints(t *testing.T) {
	d := &descriptor.InterfaceDescriptor{
		Name: "Pair",
		Methods: []descriptor.MethodDescriptor{
			{Name: "get_value", Returns: "int"},
			{Name: "getValue", Returns: "int", Export: "get_Value"},
		},
		Bindings: []descriptor.BindingDescriptor{{Receiver: "*P", Implements: []string{"Pair"}}},
	}
	result := stubgen.GenerateInterface(context.Background(), d, defaults)
	require.NoError(t, result.Err())
	_, err := stubgen.Emit(result, stubgen.EmitOptions{}, New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.InvalidDescriptor))
}
