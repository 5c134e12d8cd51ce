package screen

// Screen phrases as Tesseract reads them after upper-casing.
var (
	refreshPhrases = []string{"REFRESH THIS PLAYER", "REFRESH THIS"}
	confirmPhrases = []string{"REVEAL CLUE"}
	skipPhrases    = []string{"SWIPE TO REVEAL", "SWIPE"}
	tilePhrases    = []string{"PICK ANY CLUE BOX", "PICK ANY CLUE"}

	// Only ever printed on a revealed card.
	cardOnlyMarkers = []string{"TRADABILITY", "UNTRADABLE", "TRADABLE", "ANNIVERSARY", "PROGRAM"}

	// Printed on a revealed card, but also on the main screen's card preview.
	cardMarkers = []string{
		"POSITION", "ATTACK", "MIDFIELD", "DEFEND", "GOALKEEPER",
		"TEAM", "NATION", "OVR", "OOVR", "0VR",
	}

	mainTitles    = []string{"STAR SCOUT", "POSSIBLE REWARDS"}
	mainCallToAct = "FREE REVEAL"

	// OVR label plus the misreads seen in practice.
	attributeMarkers = []string{"OVR", "OOVR", "0VR", "OVVR"}
)
