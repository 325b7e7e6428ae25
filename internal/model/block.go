package model

// Block is one generated scheduling block and its edit state.
//
// Generated holds the compiler output; Text is what will actually be saved
// and may carry user edits. Edited entries keep their Text across
// regeneration until explicitly reset.
type Block struct {
	Label     string
	Generated string
	Text      string
	Edited    bool
}
