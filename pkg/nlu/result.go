package nlu

// IntentResult is the outcome of intent classification: a name and the
// classifier's confidence in it.
type IntentResult struct {
	IntentName  string
	Probability float64
}

// ParserResult is the terminal object returned by Engine.Parse. Intent and
// Slots are both nil iff no parser in the cascade classified the input.
type ParserResult struct {
	Input  string
	Intent *IntentResult
	Slots  []ResolvedSlot
}
