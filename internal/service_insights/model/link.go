package model

const linkIdSeparator = "→"

type Link struct {
	Source               string
	Target               string
	Count                int
	Tps                  int
	IsUninstrumented     bool
	InvalidCycleDetected bool
	InvalidCyclePath     []string
}

type LinkMap map[string]*Link

func LinkId(source string, target string) string {
	return source + linkIdSeparator + target
}
