package cardsearch

const NoResultsMessage = "No results found."

type ViewKind int

const (
	ViewEmpty ViewKind = iota
	ViewCards
	ViewError
)

// View is the display model of an outcome, independent of how it ends up
// being drawn.
type View struct {
	Kind    ViewKind
	Cards   []Card
	Message string
}

func NewView(outcome Outcome) View {
	switch o := outcome.(type) {
	case Success:
		if len(o.Cards) == 0 {
			return View{Kind: ViewEmpty, Message: NoResultsMessage}
		}
		return View{Kind: ViewCards, Cards: o.Cards}
	case Failure:
		return View{Kind: ViewError, Message: o.Message()}
	}
	return View{Kind: ViewError, Message: UnknownErrorMessage}
}
