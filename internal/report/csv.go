package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// CSVFilename is the download name of the export artifact.
const CSVFilename = "financial_news_sentiment.csv"

var csvHeader = []string{"Title", "Description", "URL", "Sentiment", "Compound", "Source", "Published At"}

// WriteCSV writes all records as comma-separated rows with a header. Titles
// are plain text here, not links.
func WriteCSV(w io.Writer, records []ArticleRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Title,
			r.Description,
			r.URL,
			string(r.Sentiment),
			strconv.FormatFloat(r.Compound, 'g', -1, 64),
			r.Source,
			r.PublishedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
