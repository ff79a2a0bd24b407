// Package extract pulls plain text out of downloaded documents.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lintang-b-s/drive-search/pkg"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

type extractFunc func(path string) (string, error)

type Extractor struct {
	formats map[string]extractFunc
}

func New() *Extractor {
	e := &Extractor{formats: make(map[string]extractFunc)}
	for _, ext := range []string{".txt", ".md", ".csv", ".c", ".cpp", ".cs", ".js", ".go", ".py"} {
		e.formats[ext] = extractPlainText
	}
	e.formats[".html"] = extractHTML
	e.formats[".htm"] = extractHTML
	e.formats[".docx"] = extractDocx
	e.formats[".pptx"] = extractPptx
	e.formats[".pdf"] = extractPDF
	return e
}

// Supported reports whether the extension of name has an extractor.
func (e *Extractor) Supported(name string) bool {
	_, ok := e.formats[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ExtractFile returns the text of the file at path. Every failure wraps pkg.ErrExtractionFailure.
func (e *Extractor) ExtractFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := e.formats[ext]
	if !ok {
		return "", pkg.WrapErrorf(nil, pkg.ErrExtractionFailure, "file format %q is not supported", ext)
	}
	text, err := fn(path)
	if err != nil {
		return "", pkg.WrapErrorf(err, pkg.ErrExtractionFailure, "error when extracting %s", filepath.Base(path))
	}
	return text, nil
}

func extractPlainText(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return DecodeText(buf)
}

// DecodeText converts buf to utf-8. Byte order marks are honoured; invalid utf-8 is read as
// windows-1251 when that yields mostly cyrillic letters, otherwise with the sniffed encoding.
func DecodeText(buf []byte) (string, error) {
	enc, name, _ := charset.DetermineEncoding(buf, "text/plain")
	if name == "utf-8" && utf8.Valid(buf) {
		return string(bytes.TrimPrefix(buf, []byte("\xef\xbb\xbf"))), nil
	}
	if name != "utf-16le" && name != "utf-16be" && !utf8.Valid(buf) {
		if decoded, err := charmap.Windows1251.NewDecoder().Bytes(buf); err == nil && mostlyCyrillic(decoded) {
			return string(decoded), nil
		}
	}
	decoded, err := enc.NewDecoder().Bytes(buf)
	if err != nil {
		return "", fmt.Errorf("error when decoding %s text: %w", name, err)
	}
	return strings.TrimPrefix(string(decoded), "\ufeff"), nil
}

func mostlyCyrillic(buf []byte) bool {
	letters, cyrillic := 0, 0
	for _, r := range string(buf) {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Cyrillic, r) {
			cyrillic++
		}
	}
	return letters > 0 && cyrillic*2 > letters
}

func extractHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r, err := charset.NewReader(f, "text/html")
	if err != nil {
		return "", err
	}
	return HTMLText(r)
}

// HTMLText returns the text nodes of an html document, skipping script and style contents.
func HTMLText(r io.Reader) (string, error) {
	var sb strings.Builder
	z := html.NewTokenizer(r)
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return sb.String(), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
				sb.WriteByte('\n')
			}
		}
	}
}

func extractDocx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return ooxmlText(f, "p")
		}
	}
	return "", fmt.Errorf("word/document.xml not found")
}

func extractPptx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	slides := []*zip.File{}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("no slides found")
	}
	sort.Slice(slides, func(i, j int) bool {
		return slides[i].Name < slides[j].Name
	})

	var sb strings.Builder
	for _, slide := range slides {
		text, err := ooxmlText(slide, "p")
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// ooxmlText concatenates the <t> runs of an office xml part, one line per paragraph element.
func ooxmlText(f *zip.File, paragraph string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("error when parsing %s: %w", f.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			} else if t.Name.Local == paragraph {
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	textReader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	buf, err := io.ReadAll(textReader)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
