package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type tokenCase struct {
	input    string
	expected []Token
}

func typesOf(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestScanTokens_Operators(t *testing.T) {
	tests := []tokenCase{
		{
			input: `+ - * / == != <= >= < > = ! += -= *= /= ++ -- ? :`,
			expected: []Token{
				{Type: Plus}, {Type: Minus}, {Type: Star}, {Type: Slash},
				{Type: EqualEqual}, {Type: BangEqual}, {Type: LessEqual}, {Type: GreaterEqual},
				{Type: Less}, {Type: Greater}, {Type: Equal}, {Type: Bang},
				{Type: PlusEqual}, {Type: MinusEqual}, {Type: StarEqual}, {Type: SlashEqual},
				{Type: PlusPlus}, {Type: MinusMinus}, {Type: Question}, {Type: Colon},
				{Type: EOF},
			},
		},
		{
			input: `( ) { } , .  ;`,
			expected: []Token{
				{Type: LeftParen}, {Type: RightParen}, {Type: LeftBrace}, {Type: RightBrace},
				{Type: Comma}, {Type: Dot}, {Type: Semicolon}, {Type: EOF},
			},
		},
	}

	for _, tc := range tests {
		lex := NewLexer(tc.input)
		tokens, diags := lex.ScanTokens()
		assert.Empty(t, diags)
		assert.Equal(t, typesOf(tc.expected), typesOf(tokens))
	}
}

func TestScanTokens_KeywordsAndIdentifiers(t *testing.T) {
	lex := NewLexer(`var x = 1; if (x) { print x; } else { return; }`)
	tokens, diags := lex.ScanTokens()
	assert.Empty(t, diags)
	assert.Equal(t, []TokenType{
		Var, Identifier, Equal, Number, Semicolon,
		If, LeftParen, Identifier, RightParen, LeftBrace,
		Print, Identifier, Semicolon, RightBrace,
		Else, LeftBrace, Return, Semicolon, RightBrace,
		EOF,
	}, typesOf(tokens))
}

func TestScanTokens_NumbersAndStrings(t *testing.T) {
	lex := NewLexer(`123 4.5 "hello\nworld"`)
	tokens, diags := lex.ScanTokens()
	assert.Empty(t, diags)

	assert.Equal(t, Number, tokens[0].Type)
	assert.Equal(t, float64(123), tokens[0].Literal)

	assert.Equal(t, Number, tokens[1].Type)
	assert.Equal(t, 4.5, tokens[1].Literal)

	assert.Equal(t, String, tokens[2].Type)
	// A backslash is not an escape introducer: the literal carries the
	// two characters `\` and `n`, not a newline.
	assert.Equal(t, `hello\nworld`, tokens[2].Literal)
}

func TestScanTokens_LineComment(t *testing.T) {
	lex := NewLexer("var a = 1; // a comment\nvar b = 2;")
	tokens, _ := lex.ScanTokens()
	assert.Equal(t, []TokenType{Var, Identifier, Equal, Number, Semicolon, Var, Identifier, Equal, Number, Semicolon, EOF}, typesOf(tokens))
}

func TestScanTokens_UnterminatedString(t *testing.T) {
	lex := NewLexer(`"never closed`)
	tokens, diags := lex.ScanTokens()
	require := assert.New(t)
	require.Len(diags, 1)
	require.Equal("unterminated string", diags[0].Message)
	require.Equal([]TokenType{EOF}, typesOf(tokens))
}

func TestScanTokens_UnexpectedCharacterIsNonFatal(t *testing.T) {
	lex := NewLexer(`var a = @ 1;`)
	tokens, diags := lex.ScanTokens()
	assert.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unexpected character")
	assert.Equal(t, []TokenType{Var, Identifier, Equal, Number, Semicolon, EOF}, typesOf(tokens))
}

func TestTernaryOperatorTokens(t *testing.T) {
	lex := NewLexer(`a ? b : c`)
	tokens, diags := lex.ScanTokens()
	assert.Empty(t, diags)
	assert.Equal(t, []TokenType{Identifier, Question, Identifier, Colon, Identifier, EOF}, typesOf(tokens))
}
