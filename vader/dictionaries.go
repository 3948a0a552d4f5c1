package vader

// negate is the set of English negation tokens, including both contracted
// and elided forms.
var negate = map[string]struct{}{
	"aint": {}, "arent": {}, "cannot": {}, "cant": {}, "couldnt": {},
	"darent": {}, "didnt": {}, "doesnt": {},
	"ain't": {}, "aren't": {}, "can't": {}, "couldn't": {}, "daren't": {},
	"didn't": {}, "doesn't": {},
	"dont": {}, "hadnt": {}, "hasnt": {}, "havent": {}, "isnt": {},
	"mightnt": {}, "mustnt": {}, "neither": {},
	"don't": {}, "hadn't": {}, "hasn't": {}, "haven't": {}, "isn't": {},
	"mightn't": {}, "mustn't": {},
	"neednt": {}, "needn't": {}, "never": {}, "none": {}, "nope": {}, "nor": {},
	"not": {}, "nothing": {}, "nowhere": {},
	"oughtnt": {}, "shant": {}, "shouldnt": {}, "uhuh": {}, "wasnt": {}, "werent": {},
	"oughtn't": {}, "shan't": {}, "shouldn't": {}, "uh-uh": {}, "wasn't": {}, "weren't": {},
	"without": {}, "wont": {}, "wouldnt": {}, "won't": {}, "wouldn't": {},
	"rarely": {}, "seldom": {}, "despite": {},
}

// boosterDict maps intensifiers and dampeners ("degree adverbs") to their
// scalar contribution. Some keys (e.g. "kind of") are multi-word.
var boosterDict = map[string]float32{
	"absolutely": boosterIncrement, "amazingly": boosterIncrement, "awfully": boosterIncrement,
	"completely": boosterIncrement, "considerable": boosterIncrement, "considerably": boosterIncrement,
	"decidedly": boosterIncrement, "deeply": boosterIncrement, "effing": boosterIncrement,
	"enormous": boosterIncrement, "enormously": boosterIncrement, "entirely": boosterIncrement,
	"especially": boosterIncrement, "exceptional": boosterIncrement, "exceptionally": boosterIncrement,
	"extreme": boosterIncrement, "extremely": boosterIncrement, "fabulously": boosterIncrement,
	"flipping": boosterIncrement, "flippin": boosterIncrement, "frackin": boosterIncrement,
	"fracking": boosterIncrement, "fricking": boosterIncrement, "frickin": boosterIncrement,
	"frigging": boosterIncrement, "friggin": boosterIncrement, "fully": boosterIncrement,
	"fuckin": boosterIncrement, "fucking": boosterIncrement, "fuggin": boosterIncrement,
	"fugging": boosterIncrement, "greatly": boosterIncrement, "hella": boosterIncrement,
	"highly": boosterIncrement, "hugely": boosterIncrement, "incredible": boosterIncrement,
	"incredibly": boosterIncrement, "intensely": boosterIncrement, "major": boosterIncrement,
	"majorly": boosterIncrement, "more": boosterIncrement, "most": boosterIncrement,
	"particularly": boosterIncrement, "purely": boosterIncrement, "quite": boosterIncrement,
	"really": boosterIncrement, "remarkably": boosterIncrement, "so": boosterIncrement,
	"substantially": boosterIncrement, "thoroughly": boosterIncrement, "total": boosterIncrement,
	"totally": boosterIncrement, "tremendous": boosterIncrement, "tremendously": boosterIncrement,
	"uber": boosterIncrement, "unbelievably": boosterIncrement, "unusually": boosterIncrement,
	"utter": boosterIncrement, "utterly": boosterIncrement, "very": boosterIncrement,

	"almost": boosterDecrement, "barely": boosterDecrement, "hardly": boosterDecrement,
	"just enough": boosterDecrement, "kind of": boosterDecrement, "kinda": boosterDecrement,
	"kindof": boosterDecrement, "kind-of": boosterDecrement, "less": boosterDecrement,
	"little": boosterDecrement, "marginal": boosterDecrement, "marginally": boosterDecrement,
	"occasional": boosterDecrement, "occasionally": boosterDecrement, "partly": boosterDecrement,
	"scarce": boosterDecrement, "scarcely": boosterDecrement, "slight": boosterDecrement,
	"slightly": boosterDecrement, "somewhat": boosterDecrement, "sort of": boosterDecrement,
	"sorta": boosterDecrement, "sortof": boosterDecrement, "sort-of": boosterDecrement,
}

// specialCases maps idiomatic n-grams to an absolute valence override.
var specialCases = map[string]float32{
	"the shit":       3.0,
	"the bomb":       3.0,
	"bad ass":        1.5,
	"badass":         1.5,
	"bus stop":       0.0,
	"yeah right":     -2.0,
	"kiss of death":  -1.5,
	"to die for":     3.0,
	"beating heart":  3.1,
	"broken heart":   -2.9,
}
