package ocr

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/kalasetu/artist-tracker/constants"
)

// extractDOCX pulls paragraph text out of word/document.xml. A .docx file is
// a zip archive; the text lives in <w:t> runs grouped under <w:p> paragraphs.
func (e *Extractor) extractDOCX(path string) (ExtractionResult, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.DOCX}, fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = zr.Close() }()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return ExtractionResult{SourceType: constants.DOCX}, fmt.Errorf("docx missing word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return ExtractionResult{SourceType: constants.DOCX}, fmt.Errorf("open document.xml: %w", err)
	}
	defer func() { _ = rc.Close() }()

	text, err := docxBodyText(rc)
	if err != nil {
		return ExtractionResult{SourceType: constants.DOCX}, err
	}
	text = Normalize(text)
	return ExtractionResult{
		Text:       text,
		Pages:      1,
		SourceType: constants.DOCX,
		Method:     "docx",
		Language:   e.cfg.TesseractLang,
		Confidence: 0.95,
	}, nil
}

func docxBodyText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	var inText bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
