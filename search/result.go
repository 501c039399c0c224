package search

import "net/url"

// Path is the search endpoint relative to the API base URL.
const Path = "/search.json"

// Result is a decoded search response.
type Result struct {
	NumFound int        `json:"numFound"`
	Start    int        `json:"start"`
	Docs     []Document `json:"docs"`
}

// Document is one entry of a search response.
type Document struct {
	CoverI                int      `json:"cover_i"`
	HasFulltext           bool     `json:"has_fulltext"`
	Title                 string   `json:"title"`
	TitleSuggest          string   `json:"title_suggest"`
	Type                  string   `json:"type"`
	EbookCountI           int      `json:"ebook_count_i"`
	EditionCount          int      `json:"edition_count"`
	Key                   string   `json:"key"`
	LastModifiedI         int      `json:"last_modified_i"`
	FirstPublishYear      int      `json:"first_publish_year"`
	AuthorName            []string `json:"author_name"`
	PublishYear           []int    `json:"publish_year"`
	AuthorKey             []string `json:"author_key"`
	Seed                  []string `json:"seed"`
	Subject               []string `json:"subject"`
	ISBN                  []string `json:"isbn"`
	EditionKey            []string `json:"edition_key"`
	Publisher             []string `json:"publisher"`
	Language              []string `json:"language"`
	Text                  []string `json:"text"`
	PublishDate           []string `json:"publish_date"`
	CoverEditionKey       string   `json:"cover_edition_key"`
	AuthorAlternativeName []string `json:"author_alternative_name"`
	Subtitle              string   `json:"subtitle"`
	IDGoodreads           []string `json:"id_goodreads"`
	LCC                   []string `json:"lcc"`
	Contributor           []string `json:"contributor"`
	OCLC                  []string `json:"oclc"`
	DDC                   []string `json:"ddc"`
	Person                []string `json:"person"`
	IACollectionS         string   `json:"ia_collection_s"`
	PrintDisabledS        string   `json:"printdisabled_s"`
	PublicScanB           *bool    `json:"public_scan_b"`
	IDLibrarything        []string `json:"id_librarything"`
	LCCN                  []string `json:"lccn"`
	PublishPlace          []string `json:"publish_place"`
	IA                    []string `json:"ia"`
	IDAmazon              []string `json:"id_amazon"`
	FirstSentence         []string `json:"first_sentence"`
	LendingIdentifierS    string   `json:"lending_identifier_s"`
	LendingEditionS       string   `json:"lending_edition_s"`
	IABoxID               []string `json:"ia_box_id"`
	IDGoogle              []string `json:"id_google"`
}

// Query returns the query parameters for a search on q.
func Query(q string) url.Values {
	return url.Values{"q": []string{q}}
}

// URL builds <base>/search.json?q=<q>.
func URL(base, q string) string {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" {
		return base + Path + "?" + Query(q).Encode()
	}
	u.Path = singleSlashJoin(u.Path, Path)
	u.RawQuery = Query(q).Encode()
	return u.String()
}

func singleSlashJoin(a, b string) string {
	for len(a) > 0 && a[len(a)-1] == '/' {
		a = a[:len(a)-1]
	}
	return a + b
}
