package llm

import (
	"regexp"
	"strings"

	"github.com/kalasetu/artist-tracker/constants"
	"github.com/kalasetu/artist-tracker/internal/entity"
)

const fallbackNote = "Extracted using fallback method with pattern matching"

var (
	rePhoneIN      = regexp.MustCompile(`(?:\+?91[-.\s]?)?[6-9]\d{9}`)
	rePhoneUS      = regexp.MustCompile(`(?:\+?1[-.\s]?)?[2-9]\d{2}[-.\s]?\d{3}[-.\s]?\d{4}`)
	rePhoneGeneral = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`)
	reEmailAddr    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	reWebsite      = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?([a-zA-Z0-9-]+\.[a-zA-Z]{2,}(?:/[^\s]*)?)`)
)

var reSocial = map[string]*regexp.Regexp{
	"instagram": regexp.MustCompile(`(?i)(?:instagram\.com/|@)([a-zA-Z0-9_.]+)`),
	"facebook":  regexp.MustCompile(`(?i)facebook\.com/([a-zA-Z0-9.]+)`),
	"twitter":   regexp.MustCompile(`(?i)(?:twitter\.com/|@)([a-zA-Z0-9_]+)`),
	"youtube":   regexp.MustCompile(`(?i)youtube\.com/(?:channel/|user/|c/)?([a-zA-Z0-9_-]+)`),
	"linkedin":  regexp.MustCompile(`(?i)linkedin\.com/in/([a-zA-Z0-9-]+)`),
	"spotify":   regexp.MustCompile(`(?i)spotify\.com/artist/([a-zA-Z0-9]+)`),
	"tiktok":    regexp.MustCompile(`(?i)tiktok\.com/@([a-zA-Z0-9_.]+)`),
}

var socialDomains = []string{
	"instagram.com", "facebook.com", "twitter.com", "youtube.com",
	"linkedin.com", "spotify.com", "tiktok.com",
}

var guruKeywords = []string{"guru", "teacher", "ustad", "pandit", "under", "trained with", "student of"}

var achievementKeywords = []string{"award", "conferred", "recognition", "performed", "festival", "honor", "prize", "achievement"}

var addressKeywords = []string{"address", "located at", "based in", "residing in"}

// BuildFallbackProfile assembles a profile from the document text using
// pattern matching, for when the model is unavailable or its output is
// unparseable. Confidence is always "medium".
func BuildFallbackProfile(artistName, documentText string) entity.ArtistProfile {
	textLower := strings.ToLower(documentText)
	lines := strings.Split(documentText, "\n")

	summary := fallbackSummary(artistName, documentText)

	p := entity.ArtistProfile{
		ArtistName: artistName,
		GuruName:   extractGuruName(lines),
		Biography: &entity.Biography{
			Background: entity.Str(summary),
		},
		Achievements:         extractAchievements(lines),
		ContactDetails:       extractContactDetails(documentText),
		Summary:              entity.Str(summary),
		ExtractionConfidence: entity.Str(constants.ConfidenceMedium),
		AdditionalNotes:      entity.Str(fallbackNote),
	}

	if gharana := extractGharanaName(lines, textLower); gharana != nil {
		details := entity.GharanaDetails{GharanaName: gharana}
		if strings.Contains(textLower, "classical") {
			details.Style = entity.Str("Indian Classical")
			details.Tradition = entity.Str("Indian Classical Music")
		}
		p.GharanaDetails = &details
	}

	return p
}

// fallbackSummary keeps the first three sentences of the document.
func fallbackSummary(artistName, text string) string {
	flat := strings.ReplaceAll(text, "\n", " ")
	sentences := strings.Split(flat, ".")
	var kept []string
	for _, s := range sentences {
		if strings.TrimSpace(s) == "" {
			continue
		}
		kept = append(kept, strings.TrimSpace(s))
		if len(kept) == 3 {
			break
		}
	}
	if len(kept) == 0 {
		return "Information about " + artistName
	}
	return strings.Join(kept, ". ") + "."
}

// extractGuruName scans for guru keywords and takes the next two words as
// the candidate name.
func extractGuruName(lines []string) *string {
	for _, line := range lines {
		lineLower := strings.ToLower(line)
		for _, keyword := range guruKeywords {
			if !strings.Contains(lineLower, keyword) {
				continue
			}
			words := strings.Fields(line)
			for i, word := range words {
				if strings.Contains(strings.ToLower(word), keyword) && i < len(words)-2 {
					candidate := strings.Trim(words[i+1]+" "+words[i+2], ".,")
					if candidate != "" {
						return entity.Str(candidate)
					}
				}
			}
		}
	}
	return nil
}

// extractGharanaName takes the word preceding "gharana".
func extractGharanaName(lines []string, textLower string) *string {
	if !strings.Contains(textLower, "gharana") {
		return nil
	}
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), "gharana") {
			continue
		}
		words := strings.Fields(line)
		for i, word := range words {
			if strings.Contains(strings.ToLower(word), "gharana") && i > 0 {
				return entity.Str(words[i-1])
			}
		}
		break
	}
	return nil
}

func extractAchievements(lines []string) []entity.Achievement {
	var out []entity.Achievement
	for _, line := range lines {
		lineLower := strings.ToLower(line)
		for _, keyword := range achievementKeywords {
			if strings.Contains(lineLower, keyword) {
				out = append(out, entity.Achievement{
					Type:  entity.Str("recognition"),
					Title: entity.Str(strings.TrimSpace(line)),
				})
				break
			}
		}
	}
	return out
}

func extractContactDetails(text string) *entity.ContactDetails {
	var phones []string
	for _, re := range []*regexp.Regexp{rePhoneIN, rePhoneUS, rePhoneGeneral} {
		phones = append(phones, re.FindAllString(text, -1)...)
	}
	emails := reEmailAddr.FindAllString(text, -1)

	social := entity.SocialMedia{}
	setSocial := map[string]**string{
		"instagram": &social.Instagram,
		"facebook":  &social.Facebook,
		"twitter":   &social.Twitter,
		"youtube":   &social.YouTube,
		"linkedin":  &social.LinkedIn,
		"spotify":   &social.Spotify,
		"tiktok":    &social.TikTok,
	}
	for platform, re := range reSocial {
		if m := re.FindStringSubmatch(text); m != nil {
			*setSocial[platform] = entity.Str(m[1])
		}
	}

	website := findWebsite(text)

	info := entity.ContactInfo{
		PhoneNumbers: phones,
		Emails:       emails,
		Website:      website,
	}
	if len(phones) > 0 {
		info.Phone = entity.Str(phones[0])
	}
	if len(emails) > 0 {
		info.Email = entity.Str(emails[0])
	}

	details := entity.ContactDetails{
		SocialMedia: &social,
		ContactInfo: &info,
	}
	if addr := findAddressLine(text); addr != nil {
		details.Address = &entity.Address{FullAddress: addr}
	}
	return &details
}

// findWebsite returns the first domain-looking match that is not a social
// media site, normalized to https.
func findWebsite(text string) *string {
	for _, m := range reWebsite.FindAllStringSubmatch(text, -1) {
		site := m[1]
		siteLower := strings.ToLower(site)
		isSocial := false
		for _, domain := range socialDomains {
			if strings.Contains(siteLower, domain) {
				isSocial = true
				break
			}
		}
		if isSocial {
			continue
		}
		if !strings.HasPrefix(site, "http") {
			site = "https://" + site
		}
		return entity.Str(site)
	}
	return nil
}

func findAddressLine(text string) *string {
	for _, line := range strings.Split(text, "\n") {
		lineLower := strings.ToLower(line)
		for _, keyword := range addressKeywords {
			if strings.Contains(lineLower, keyword) {
				return entity.Str(strings.TrimSpace(line))
			}
		}
	}
	return nil
}
