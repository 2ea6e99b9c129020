// Package feed renders the podcast RSS document from the episode ledger.
// The output is a pure function of the episode collection and channel
// settings, so regenerating with unchanged inputs yields byte-identical XML
// apart from the lastBuildDate stamp.
package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"paperweights/internal/config"
	"paperweights/internal/store"
)

const itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"

type rssDocument struct {
	XMLName      xml.Name `xml:"rss"`
	Version      string   `xml:"version,attr"`
	ItunesXMLNS  string   `xml:"xmlns:itunes,attr"`
	ContentXMLNS string   `xml:"xmlns:content,attr"`
	Channel      channel  `xml:"channel"`
}

type channel struct {
	Title          string         `xml:"title"`
	Description    string         `xml:"description"`
	Link           string         `xml:"link"`
	Language       string         `xml:"language"`
	LastBuildDate  string         `xml:"lastBuildDate,omitempty"`
	ItunesAuthor   string         `xml:"itunes:author"`
	ItunesExplicit string         `xml:"itunes:explicit"`
	ItunesOwner    *itunesOwner   `xml:"itunes:owner,omitempty"`
	ItunesCategory itunesCategory `xml:"itunes:category"`
	ItunesImage    itunesImage    `xml:"itunes:image"`
	Items          []item         `xml:"item"`
}

type itunesOwner struct {
	Name  string `xml:"itunes:name"`
	Email string `xml:"itunes:email"`
}

type itunesCategory struct {
	Text string `xml:"text,attr"`
}

type itunesImage struct {
	Href string `xml:"href,attr"`
}

type item struct {
	Title          string    `xml:"title"`
	Description    string    `xml:"description"`
	Link           string    `xml:"link"`
	GUID           string    `xml:"guid"`
	PubDate        string    `xml:"pubDate"`
	Enclosure      enclosure `xml:"enclosure"`
	ItunesDuration string    `xml:"itunes:duration"`
}

type enclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// Generator builds feed documents for one channel.
type Generator struct {
	channel   config.Feed
	repo      string
	assetsTag string
	coverName string
	now       func() time.Time
}

// NewGenerator constructs a Generator. repo is "owner/name"; coverName is
// the cover art asset file name inside the assets release.
func NewGenerator(channelCfg config.Feed, repo, assetsTag, coverName string) *Generator {
	return &Generator{
		channel:   channelCfg,
		repo:      repo,
		assetsTag: assetsTag,
		coverName: coverName,
		now:       time.Now,
	}
}

// WithClock overrides the lastBuildDate source; tests pin it for
// byte-identical output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Build renders the feed for the given episodes. Callers pass the ledger's
// published set ordered newest first; order is preserved verbatim.
func (g *Generator) Build(episodes []store.Episode) ([]byte, error) {
	ch := channel{
		Title:          g.channel.Title,
		Description:    g.channel.Description,
		Link:           g.channel.Link,
		Language:       g.channel.Language,
		LastBuildDate:  g.now().UTC().Format(time.RFC1123Z),
		ItunesAuthor:   g.channel.Author,
		ItunesExplicit: g.channel.Explicit,
		ItunesCategory: itunesCategory{Text: g.channel.Category},
		ItunesImage:    itunesImage{Href: g.assetURL(g.assetsTag, g.coverName)},
	}
	if g.channel.Email != "" {
		ch.ItunesOwner = &itunesOwner{Name: g.channel.Author, Email: g.channel.Email}
	}

	for _, ep := range episodes {
		entry, err := g.buildItem(ep)
		if err != nil {
			return nil, err
		}
		ch.Items = append(ch.Items, entry)
	}

	doc := rssDocument{
		Version:      "2.0",
		ItunesXMLNS:  itunesNamespace,
		ContentXMLNS: "http://purl.org/rss/1.0/modules/content/",
		Channel:      ch,
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func (g *Generator) buildItem(ep store.Episode) (item, error) {
	pubDate, err := g.pubDate(ep.Date)
	if err != nil {
		return item{}, err
	}
	url := g.assetURL(ep.Date, ep.AudioFile)
	return item{
		Title:       ep.Title,
		Description: ep.Description,
		Link:        url,
		GUID:        url,
		PubDate:     pubDate,
		Enclosure: enclosure{
			URL:    url,
			Length: ep.SizeBytes,
			Type:   "audio/mpeg",
		},
		ItunesDuration: formatDuration(ep.DurationSeconds),
	}, nil
}

func (g *Generator) assetURL(tag, name string) string {
	return fmt.Sprintf("https://github.com/%s/releases/download/%s/%s", g.repo, tag, name)
}

// pubDate combines the episode date with the channel's fixed publish time
// of day, matching the RFC 1123 shape feed readers expect.
func (g *Generator) pubDate(date string) (string, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("parse episode date %q: %w", date, err)
	}
	return fmt.Sprintf("%s %s", day.Format("Mon, 02 Jan 2006"), g.channel.PublishTime), nil
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
