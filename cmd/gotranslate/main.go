// Command gotranslate trains a Danish to English attention seq2seq model.
//
// Usage:
//
//	gotranslate train [corpus files...]   # Train, plot, translate the sample sentences
//	gotranslate vocab [corpus files...]   # Print corpus and vocabulary statistics
package main

import "github.com/FlavioCFOliveira/GoTranslate/cmd/gotranslate/cmd"

var version = "dev"

func main() {
	cmd.Version = version
	cmd.Execute()
}
