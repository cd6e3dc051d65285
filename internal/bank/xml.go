package bank

import "encoding/xml"

// Moodle XML export, only the elements the lookup reads.

type quizXML struct {
	XMLName   xml.Name      `xml:"quiz"`
	Questions []questionXML `xml:"question"`
}

type questionXML struct {
	Type         string           `xml:"type,attr"`
	Name         textXML          `xml:"name"`
	QuestionText questionTextXML  `xml:"questiontext"`
	Single       string           `xml:"single"`
	Answers      []answerXML      `xml:"answer"`
	Dragboxes    []dragboxXML     `xml:"dragbox"`
	Subquestions []subquestionXML `xml:"subquestion"`
}

type textXML struct {
	Text string `xml:"text"`
}

type questionTextXML struct {
	Format string    `xml:"format,attr"`
	Text   string    `xml:"text"`
	Files  []fileXML `xml:"file"`
}

type fileXML struct {
	Name     string `xml:"name,attr"`
	Encoding string `xml:"encoding,attr"`
	Data     string `xml:",chardata"`
}

type answerXML struct {
	Fraction string `xml:"fraction,attr"`
	Text     string `xml:"text"`
}

type dragboxXML struct {
	Text  string `xml:"text"`
	Group string `xml:"group"`
}

type subquestionXML struct {
	Text   string  `xml:"text"`
	Answer textXML `xml:"answer"`
}
