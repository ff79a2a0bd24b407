package searcher

const (
	LatinAlphabet    = "abcdefghijklmnopqrstuvwxyz"
	CyrillicAlphabet = "абвгдеёжзийклмнопрстуфхцчшщъыьэюя"

	DefaultAlphabet = LatinAlphabet + CyrillicAlphabet
)

// Alphabet returns the distinct runes of s in order of first appearance.
func Alphabet(s string) []rune {
	seen := make(map[rune]struct{}, len(s))
	alphabet := make([]rune, 0, len(s))
	for _, r := range s {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		alphabet = append(alphabet, r)
	}
	return alphabet
}
