// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

// E-utilities XML payloads. Only the fields the adapter reads are
// declared; everything else in the provider's schema is ignored by the
// decoder. All fields are optional at the XML level, so extraction
// helpers must tolerate empty values.

type esearchResult struct {
	Count  int        `xml:"Count"`
	RetMax int        `xml:"RetMax"`
	IDList esearchIDs `xml:"IdList"`
}

type esearchIDs struct {
	IDs []string `xml:"Id"`
}

type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation medlineCitation `xml:"MedlineCitation"`
	PubmedData      pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID    pmid           `xml:"PMID"`
	Article articleElement `xml:"Article"`
}

type pmid struct {
	Value string `xml:",chardata"`
}

type articleElement struct {
	Journal      journalElement `xml:"Journal"`
	ArticleTitle string         `xml:"ArticleTitle"`
	Abstract     abstractBlock  `xml:"Abstract"`
	AuthorList   authorList     `xml:"AuthorList"`
	ELocationIDs []eLocationID  `xml:"ELocationID"`
	ArticleDates []articleDate  `xml:"ArticleDate"`
}

type journalElement struct {
	Title           string       `xml:"Title"`
	ISOAbbreviation string       `xml:"ISOAbbreviation"`
	JournalIssue    journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	Volume  string  `xml:"Volume"`
	Issue   string  `xml:"Issue"`
	PubDate pubDate `xml:"PubDate"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

type abstractBlock struct {
	Texts []abstractText `xml:"AbstractText"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Value string `xml:",chardata"`
}

type authorList struct {
	Authors []authorElement `xml:"Author"`
}

type authorElement struct {
	ValidYN        string `xml:"ValidYN,attr"`
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	Initials       string `xml:"Initials"`
	CollectiveName string `xml:"CollectiveName"`
}

type eLocationID struct {
	EIdType string `xml:"EIdType,attr"`
	Value   string `xml:",chardata"`
}

type articleDate struct {
	DateType string `xml:"DateType,attr"`
	Year     string `xml:"Year"`
	Month    string `xml:"Month"`
	Day      string `xml:"Day"`
}

type pubmedData struct {
	ArticleIDList articleIDList `xml:"ArticleIdList"`
}

type articleIDList struct {
	IDs []articleID `xml:"ArticleId"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// elink neighbor responses.

type elinkResult struct {
	LinkSets []linkSet `xml:"LinkSet"`
}

type linkSet struct {
	LinkSetDbs []linkSetDb `xml:"LinkSetDb"`
}

type linkSetDb struct {
	LinkName string     `xml:"LinkName"`
	Links    []linkElem `xml:"Link"`
}

type linkElem struct {
	ID string `xml:"Id"`
}
