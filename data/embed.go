// Package data embeds the dictionary files the pipeline loads at startup.
package data

import _ "embed"

//go:embed lexicon.txt
var SentimentLexicon string

//go:embed emoji.txt
var Emoji string
