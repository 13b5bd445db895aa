// Package discover turns a description of the reader into a set of
// candidate communities: it generates a reader profile, extracts
// search keywords from it, and looks the keywords up on Reddit.
package discover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"google.golang.org/genai"

	"whatsup/pkg/llm"
	"whatsup/pkg/reddit"
	"whatsup/pkg/types"
)

const profileSystem = `You are a professional consultant that helps users articulate their learning goals for career growth. First, understand the level of expertise the user might have. Choose one level from the following and then provide a concise reason for your choice:
{
    "beginner": "You are new to the field or subject and have limited knowledge or experience. You might have taken an introductory course, read some materials, or started exploring the basics.",
    "intermediate": "You have a foundational understanding and some practical experience in the field. You are confident in basic tasks and concepts but seek to deepen your knowledge and handle more complex challenges.",
    "proficient": "You are skilled and experienced in the field, capable of working independently on a wide range of tasks. You're looking to refine your expertise and take on leadership or specialized roles.",
    "expert": "You are a highly experienced professional with deep expertise in your field. You are a thought leader or specialist, frequently driving innovation, mentoring others, or leading high-impact initiatives."
}
Your task is to generate a user profile that reflects the user's interests and intent. The user profile should provide clear and concise information on who the user is, what they are interested in, and what their intentions are.`

const keywordsSystem = `You are an intelligent assistant tasked with generating relevant keywords based on a user's profile. The user's profile contains information about their background (who they are) and their goals or interests (their intent). Your role is to infer and identify key concepts, even if they are not explicitly mentioned in the profile, and provide a list of keywords that can be used to search for subreddits matching their interests.

- Focus on understanding the user's profile context to form a comprehensive and relevant list of keywords.
- Include related and inferred concepts that align with the user's interests, goals, and potential areas of exploration.

Be creative and accurate in your keyword generation, ensuring they align closely with the user's profile and intent while covering related concepts that may be valuable.`

var profileSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"user_profile":    {Type: genai.TypeString, Description: "User profile based on the user's interests and intent."},
		"expertise_level": {Type: genai.TypeString, Description: "Expertise level of the user profile"},
		"reason":          {Type: genai.TypeString, Description: "Reasoning behind expertise level"},
	},
	Required: []string{"user_profile", "expertise_level", "reason"},
}

var keywordsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"keywords": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Keywords extracted from the user profile",
		},
	},
	Required: []string{"keywords"},
}

// Discoverer generates reader profiles and finds communities for them.
type Discoverer struct {
	completer llm.Completer
	api       reddit.API
}

func NewDiscoverer(completer llm.Completer, api reddit.API) *Discoverer {
	return &Discoverer{completer: completer, api: api}
}

// Profile generates a reader profile from a plain description of who
// the reader is, what they are interested in, and what they are after.
func (d *Discoverer) Profile(ctx context.Context, who, interest, intent string) (types.ReaderProfile, error) {
	user := fmt.Sprintf("Given the user profile: %s, %s, %s, generate a user profile similar to the one below:", who, interest, intent)
	raw, err := d.completer.Complete(ctx, profileSystem, user, profileSchema)
	if err != nil {
		return types.ReaderProfile{}, fmt.Errorf("generate profile: %w", err)
	}
	var profile types.ReaderProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return types.ReaderProfile{}, fmt.Errorf("%w: decode profile: %v", types.ErrIntegrity, err)
	}
	return profile, nil
}

// Keywords extracts search keywords from a reader profile.
func (d *Discoverer) Keywords(ctx context.Context, profile string) ([]string, error) {
	raw, err := d.completer.Complete(ctx, keywordsSystem, profile, keywordsSchema)
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}
	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode keywords: %v", types.ErrIntegrity, err)
	}
	return parsed.Keywords, nil
}

// SearchCommunities looks each keyword up and returns the matching
// communities per keyword. A keyword whose search fails is logged and
// mapped to an empty slice.
func (d *Discoverer) SearchCommunities(ctx context.Context, keywords []string, perKeyword int) (map[string][]types.SubredditInfo, error) {
	results := make(map[string][]types.SubredditInfo, len(keywords))
	for _, keyword := range keywords {
		found, err := d.api.SearchCommunities(ctx, keyword, perKeyword)
		if err != nil {
			if errors.Is(err, types.ErrAuth) {
				return nil, err
			}
			log.Printf("discover: search %q failed: %v", keyword, err)
			results[keyword] = nil
			continue
		}
		results[keyword] = found
	}
	return results, nil
}
