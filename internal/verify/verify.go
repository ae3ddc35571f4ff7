// Package verify implements site-ownership verification: a server-issued
// code the site owner publishes in a meta tag, checked by fetching the page.
package verify

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/devtrace/devtrace/internal/models"
)

// MetaTagName is the meta tag the owner must publish on their site.
const MetaTagName = "DevTrace-Varify-HMK-CodeWeb"

var (
	ErrInvalidURL        = errors.New("invalid site url")
	ErrAlreadyRegistered = errors.New("site already registered")

	// ErrUpstream means the verification fetch itself failed. Distinct from
	// "tag not found": the site could not be checked at all.
	ErrUpstream = errors.New("could not fetch site")
)

type Service struct {
	db     *sql.DB
	client *http.Client
}

// NewService builds a verification service whose outbound fetches are
// bounded by timeout.
func NewService(db *sql.DB, timeout time.Duration) *Service {
	return &Service{
		db:     db,
		client: &http.Client{Timeout: timeout},
	}
}

// GenerateCode returns a 160-bit one-time code, hex-encoded.
func GenerateCode() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MetaTag renders the snippet the owner must publish.
func MetaTag(code string) string {
	return fmt.Sprintf(`<meta name="%s" content="%s" />`, MetaTagName, code)
}

// Add registers a site URL pending proof of ownership and issues its code.
func (s *Service) Add(siteURL string) (*models.OwnershipToken, error) {
	if !models.ValidateSiteURL(siteURL) {
		return nil, ErrInvalidURL
	}

	if _, err := models.GetOwnershipTokenByURL(s.db, siteURL); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}
	return models.CreateOwnershipToken(s.db, siteURL, code)
}

// Verify fetches the registered site and checks its published meta tag
// against the issued code. A match flips the stored verified flag. A page
// without the tag (or with the wrong code) returns (false, nil); a failed
// fetch returns ErrUpstream.
func (s *Service) Verify(ctx context.Context, siteID int64) (bool, error) {
	token, err := models.GetOwnershipTokenByID(s.db, siteID)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, token.SiteURL, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("site_url", token.SiteURL).Msg("ownership fetch failed")
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if findMetaContent(doc, MetaTagName) != token.Code {
		return false, nil
	}

	if err := models.MarkOwnershipVerified(s.db, token.ID); err != nil {
		return false, err
	}
	log.Info().Str("site_url", token.SiteURL).Msg("site ownership verified")
	return true, nil
}

// findMetaContent walks the document for <meta name=NAME content=...> and
// returns its content, or "" when absent.
func findMetaContent(n *html.Node, name string) string {
	if n.Type == html.ElementNode && n.Data == "meta" {
		var metaName, content string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "name":
				metaName = attr.Val
			case "content":
				content = attr.Val
			}
		}
		if metaName == name {
			return content
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findMetaContent(c, name); found != "" {
			return found
		}
	}
	return ""
}
