package llm

import (
	"fmt"
	"strings"
)

const maxPromptTextBytes = 12000

const profileJSONShape = `{
  "artist_name": "%[1]s",
  "guru_name": "Primary guru/teacher name or null",
  "gharana_details": {
    "gharana_name": "Gharana name or null",
    "style": "Musical/dance style or null",
    "tradition": "Cultural tradition or null"
  },
  "biography": {
    "early_life": "Early life details or null",
    "background": "Background information or null",
    "education": "Education details or null",
    "career_highlights": "Career highlights or null"
  },
  "achievements": [
    {
      "type": "award/performance/recognition",
      "title": "Achievement title",
      "year": "Year or null",
      "details": "Additional details or null"
    }
  ],
  "contact_details": {
    "social_media": {
      "instagram": "Instagram handle/URL or null",
      "facebook": "Facebook profile/URL or null",
      "twitter": "Twitter handle/URL or null",
      "youtube": "YouTube channel/URL or null",
      "linkedin": "LinkedIn profile/URL or null",
      "spotify": "Spotify artist profile/URL or null",
      "tiktok": "TikTok handle/URL or null",
      "other": "Any other social media links or null"
    },
    "contact_info": {
      "phone_numbers": ["Phone number 1", "Phone number 2"],
      "emails": ["email1@example.com", "email2@example.com"],
      "website": "Website URL or null",
      "phone": "Primary phone number or null",
      "email": "Primary email address or null"
    },
    "address": {
      "full_address": "Complete postal address or null",
      "city": "City or null",
      "state": "State/Province or null",
      "country": "Country or null"
    }
  },
  "summary": "Comprehensive summary of the artist based on the document",
  "extraction_confidence": "high/medium/low",
  "additional_notes": "Any other relevant information"
}`

// BuildExtractionPrompt composes the single-message extraction prompt. The
// artist name comes from the filename and the model is told to treat it as
// confirmed.
func BuildExtractionPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString("# Artist Information Extraction Task\n\n")
	b.WriteString("You are an expert information extraction specialist. Please extract comprehensive artist information from the provided document text. The artist name is: \"")
	b.WriteString(req.ArtistName)
	b.WriteString("\"\n\n")

	if req.FilenameHint != "" {
		fmt.Fprintf(&b, "## Source Document: %s\n\n", req.FilenameHint)
	}

	b.WriteString("## Document Text:\n")
	b.WriteString(clampText(req.DocumentText, maxPromptTextBytes))
	b.WriteString("\n\n")

	b.WriteString("## Required Information to Extract:\n\n")
	b.WriteString("Please extract and format the following information as JSON:\n\n")
	fmt.Fprintf(&b, "1. **Artist Name**: Use %q (confirmed from filename)\n", req.ArtistName)
	b.WriteString("2. **Guru/Teacher Names**: Any mentioned teachers, gurus, or mentors\n")
	b.WriteString("3. **Gharana Details**: Musical/dance tradition, school, style\n")
	b.WriteString("4. **Biography**: Background, early life, education, career details\n")
	b.WriteString("5. **Achievements**: Awards, recognitions, performances, accomplishments\n")
	b.WriteString("6. **Contact Details**: Phone, email, social media, address if mentioned\n")
	b.WriteString("7. **Summary**: Comprehensive summary of the artist's profile\n\n")

	b.WriteString("## Output Format (JSON):\n\n```json\n")
	fmt.Fprintf(&b, profileJSONShape, req.ArtistName)
	b.WriteString("\n```\n\n")

	b.WriteString("## Guidelines:\n")
	fmt.Fprintf(&b, "- ALWAYS use %q as the artist_name\n", req.ArtistName)
	b.WriteString("- Extract information ONLY from the provided document text\n")
	b.WriteString("- Use null for information not found in the document\n")
	b.WriteString("- Handle OCR errors intelligently\n")
	b.WriteString("- Be accurate and factual\n")
	b.WriteString("- Generate a comprehensive summary based on available information\n")
	b.WriteString("- For contact details: Extract all phone numbers, email addresses, social media handles, websites\n\n")

	b.WriteString("Please analyze the document and provide the extracted information in the exact JSON format specified.")
	return b.String()
}

// BuildEnhancementPrompt composes the enhancement-only prompt: existing data
// is preserved and only null fields, mainly contact details and social media,
// get filled from the model's own knowledge of the artist.
func BuildEnhancementPrompt(req EnhanceRequest) string {
	var b strings.Builder
	b.WriteString("# Artist Contact Details Enhancement Task\n\n")
	b.WriteString("You are an expert information extraction and enhancement specialist. You have existing artist information, and you need to find missing contact details and social media information.\n\n")

	fmt.Fprintf(&b, "## Artist Name: %s\n\n", req.ArtistName)

	b.WriteString("## Existing Artist Data:\n")
	b.Write(req.ExistingProfile)
	b.WriteString("\n\n")

	b.WriteString("## Original Document Text (if available):\n")
	b.WriteString(clampText(req.DocumentText, 1000))
	b.WriteString("\n\n")

	b.WriteString("## Enhancement Instructions:\n\n")
	b.WriteString("1. **Primary Task**: Find missing contact details and social media information for the artist\n")
	b.WriteString("2. **Keep Existing Data**: Do not modify any existing non-null information\n")
	b.WriteString("3. **Fill Missing Fields**: Only populate fields that are currently null or empty\n")
	b.WriteString("4. **Use Reliable Sources**: When enhancing, use knowledge from reliable sources about this artist\n")
	b.WriteString("5. **Maintain Accuracy**: Only add information you are confident about\n")
	b.WriteString("6. **Set Null if Not Found**: If information cannot be found, leave as null\n\n")

	b.WriteString("## Output Format (JSON):\n\n```json\n")
	fmt.Fprintf(&b, profileJSONShape, req.ArtistName)
	b.WriteString("\n```\n\n")

	b.WriteString("## Guidelines:\n")
	b.WriteString("- ALWAYS preserve existing non-null data\n")
	b.WriteString("- Only enhance fields that are null, empty, or missing\n")
	b.WriteString("- Focus heavily on finding contact details and social media\n")
	b.WriteString("- Set fields to null if information cannot be found reliably\n")
	b.WriteString("- Provide enhancement notes about what was added under additional_notes\n\n")

	b.WriteString("Please enhance the artist data by finding missing contact details and social media information.")
	return b.String()
}

func clampText(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
