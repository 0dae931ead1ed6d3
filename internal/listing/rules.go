package listing

import (
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reason texts, in rule order.
const (
	ReasonSuspiciousTitle   = "Suspicious language in title"
	ReasonLowPrice          = "Unusually low price"
	ReasonHighPrice         = "Reasonable price range"
	ReasonReputableSeller   = "Reputable seller"
	ReasonSuspiciousSeller  = "Suspicious seller name"
	ReasonLowRating         = "Very low rating"
	ReasonGoodRating        = "Good rating"
	ReasonFewReviews        = "Very few reviews"
	ReasonManyReviews       = "Many reviews"
	ReasonModerateReviews   = "Moderate number of reviews"
	ReasonShortTitle        = "Very short product title"
	ReasonLongTitle         = "Unusually long product title"
	ReasonTitleLength       = "Appropriate title length"
	ReasonMissingInfo       = "Missing critical product information"
	ReasonCompleteInfo      = "Complete product information available"
	ReasonAIGenerated       = "AI-generated content detected"
)

var (
	suspiciousPhrases = []string{"urgent", "limited time", "act now", "guaranteed", "miracle", "secret", "exclusive offer"}
	reputableSellers  = []string{"amazon", "walmart", "target"}
)

// Side is the direction a rule pushes the verdict.
type Side int

const (
	Scam Side = iota
	Legit
)

// Rule is one weighted indicator. Exclusivity between rules is encoded in
// the predicates.
type Rule struct {
	Number  int
	Side    Side
	Weight  float64
	Reason  string
	Applies func(v *listingView) bool
}

// listingView is a listing with every field parsed once.
type listingView struct {
	title           string
	titleLen        int
	suspiciousTitle bool

	seller          string
	sellerLen       int
	sellerDigits    bool
	reputableSeller bool

	price, rating, reviews          float64
	hasPrice, hasRating, hasReviews bool

	missing int
}

var rules = []Rule{
	{1, Scam, 1, ReasonSuspiciousTitle, func(v *listingView) bool { return v.suspiciousTitle }},
	{2, Scam, 1, ReasonLowPrice, func(v *listingView) bool { return v.hasPrice && v.price < 1.0 }},
	{3, Legit, 1, ReasonHighPrice, func(v *listingView) bool { return v.hasPrice && v.price > 1000 }},
	{4, Legit, 1, ReasonReputableSeller, func(v *listingView) bool { return v.seller != "" && v.reputableSeller }},
	{5, Scam, 1, ReasonSuspiciousSeller, func(v *listingView) bool {
		return v.seller != "" && !v.reputableSeller && (v.sellerLen < 3 || v.sellerDigits)
	}},
	{6, Scam, 1, ReasonLowRating, func(v *listingView) bool { return v.hasRating && v.rating < 2.0 }},
	{7, Legit, 1, ReasonGoodRating, func(v *listingView) bool { return v.hasRating && v.rating > 4.0 }},
	{8, Scam, 1, ReasonFewReviews, func(v *listingView) bool { return v.hasReviews && v.reviews < 5 }},
	{9, Legit, 1, ReasonManyReviews, func(v *listingView) bool { return v.hasReviews && v.reviews > 100 }},
	{10, Legit, 0.5, ReasonModerateReviews, func(v *listingView) bool {
		return v.hasReviews && v.reviews > 20 && v.reviews <= 100
	}},
	{11, Scam, 1, ReasonShortTitle, func(v *listingView) bool { return v.title != "" && v.titleLen < 10 }},
	{12, Scam, 0.5, ReasonLongTitle, func(v *listingView) bool { return v.titleLen > 100 }},
	{13, Legit, 0.5, ReasonTitleLength, func(v *listingView) bool { return v.titleLen >= 20 && v.titleLen <= 80 }},
	{14, Scam, 1, ReasonMissingInfo, func(v *listingView) bool { return v.missing >= 2 }},
	{15, Legit, 0.5, ReasonCompleteInfo, func(v *listingView) bool { return v.missing == 0 }},
}

// phraseSet is a case-folded substring matcher. The underlying automaton
// keeps per-match scratch state, hence the lock.
type phraseSet struct {
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

func newPhraseSet(phrases []string) *phraseSet {
	return &phraseSet{matcher: ahocorasick.NewStringMatcher(phrases)}
}

// containsAny reports whether lowered contains any phrase.
func (p *phraseSet) containsAny(lowered string) bool {
	if lowered == "" {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.matcher.Match([]byte(lowered))) > 0
}

// lower folds s with Unicode rules. Casers are stateful, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// Evaluator applies the indicator rule table to listings. It is safe for
// concurrent use.
type Evaluator struct {
	suspicious *phraseSet
	reputable  *phraseSet
}

// NewEvaluator builds the phrase matchers used by rules 1 and 4.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		suspicious: newPhraseSet(suspiciousPhrases),
		reputable:  newPhraseSet(reputableSellers),
	}
}

func (e *Evaluator) view(l ProductListing) *listingView {
	sellerLower := lower(l.Seller)

	v := &listingView{
		title:           l.Title,
		titleLen:        utf8.RuneCountInString(l.Title),
		suspiciousTitle: e.suspicious.containsAny(lower(l.Title)),
		seller:          l.Seller,
		sellerLen:       utf8.RuneCountInString(sellerLower),
		sellerDigits:    allDigits(sellerLower),
		reputableSeller: e.reputable.containsAny(sellerLower),
	}
	v.price, v.hasPrice = ParseDecimal(l.Price)
	v.rating, v.hasRating = ParseDecimal(l.Rating)
	v.reviews, v.hasReviews = ParseCount(l.ReviewsCount)

	for _, field := range []string{l.Price, l.Rating, l.ReviewsCount} {
		if field == "" {
			v.missing++
		}
	}
	return v
}

// Evaluate runs every rule in table order and returns the tally.
func (e *Evaluator) Evaluate(l ProductListing) IndicatorTally {
	v := e.view(l)
	tally := IndicatorTally{Reasons: []string{}, Fired: []int{}}

	for _, rule := range rules {
		if !rule.Applies(v) {
			continue
		}
		if rule.Side == Scam {
			tally.ScamScore += rule.Weight
		} else {
			tally.LegitScore += rule.Weight
		}
		tally.Reasons = append(tally.Reasons, rule.Reason)
		tally.Fired = append(tally.Fired, rule.Number)
	}
	return tally
}
