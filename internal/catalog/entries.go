package catalog

import "example.com/subscription-reaper/backend/internal/models"

const wikimedia = "https://upload.wikimedia.org/wikipedia/commons/"

func builtinEntries() []Entry {
	return []Entry{
		// Streaming
		{ID: "netflix", Name: "Netflix", LogoURL: wikimedia + "f/ff/Netflix-new-icon.png", Category: models.CategoryEntertainment, DefaultIcon: "play.tv.fill"},
		{ID: "spotify", Name: "Spotify", LogoURL: wikimedia + "thumb/1/19/Spotify_logo_without_text.svg/1024px-Spotify_logo_without_text.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "music.note"},
		{ID: "youtube", Name: "YouTube", LogoURL: wikimedia + "thumb/0/09/YouTube_full-color_icon_%282017%29.svg/1024px-YouTube_full-color_icon_%282017%29.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "play.rectangle.fill"},
		{ID: "disney", Name: "Disney+", LogoURL: wikimedia + "thumb/3/3e/Disney%2B_logo.svg/1024px-Disney%2B_logo.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "sparkles.tv.fill"},
		{ID: "hulu", Name: "Hulu", LogoURL: wikimedia + "thumb/e/e4/Hulu_Logo.svg/1024px-Hulu_Logo.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "play.fill"},
		{ID: "hbo", Name: "Max", LogoURL: wikimedia + "thumb/c/ce/Max_logo.svg/1024px-Max_logo.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "play.circle.fill"},
		{ID: "prime", Name: "Prime Video", LogoURL: wikimedia + "thumb/1/11/Amazon_Prime_Video_logo.svg/1024px-Amazon_Prime_Video_logo.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "play.square.fill"},
		{ID: "paramount", Name: "Paramount+", LogoURL: wikimedia + "thumb/a/a5/Paramount_Plus.svg/1024px-Paramount_Plus.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "play.circle"},
		{ID: "crunchyroll", Name: "Crunchyroll", LogoURL: wikimedia + "thumb/1/16/Crunchyroll_logo.svg/1024px-Crunchyroll_logo.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "play.tv"},
		{ID: "twitch", Name: "Twitch", LogoURL: wikimedia + "thumb/2/26/Twitch_logo.svg/1024px-Twitch_logo.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "video.fill"},

		// AI tools
		{ID: "chatgpt", Name: "ChatGPT", LogoURL: wikimedia + "thumb/0/04/ChatGPT_logo.svg/1024px-ChatGPT_logo.svg.png", Category: models.CategoryProductivity, DefaultIcon: "cpu"},
		{ID: "claude", Name: "Claude AI", LogoURL: wikimedia + "thumb/3/3a/Anthropic_logo.svg/1024px-Anthropic_logo.svg.png", Category: models.CategoryProductivity, DefaultIcon: "message.and.waveform.fill"},
		{ID: "midjourney", Name: "Midjourney", LogoURL: wikimedia + "thumb/e/e6/Midjourney_Emblem.svg/1024px-Midjourney_Emblem.svg.png", Category: models.CategoryOther, DefaultIcon: "paintpalette.fill"},
		{ID: "perplexity", Name: "Perplexity", LogoURL: wikimedia + "thumb/e/e4/Perplexity_AI_logo.svg/1024px-Perplexity_AI_logo.svg.png", Category: models.CategoryProductivity, DefaultIcon: "magnifyingglass"},
		{ID: "gemini", Name: "Google Gemini", LogoURL: wikimedia + "thumb/8/8a/Google_Gemini_logo.svg/1024px-Google_Gemini_logo.svg.png", Category: models.CategoryProductivity, DefaultIcon: "sparkles"},

		// VPN
		{ID: "nordvpn", Name: "NordVPN", LogoURL: wikimedia + "thumb/e/e1/NordVPN_logo.svg/1024px-NordVPN_logo.svg.png", Category: models.CategoryUtilities, DefaultIcon: "lock.shield.fill"},
		{ID: "expressvpn", Name: "ExpressVPN", LogoURL: wikimedia + "thumb/1/1e/ExpressVPN_logo.svg/1024px-ExpressVPN_logo.svg.png", Category: models.CategoryUtilities, DefaultIcon: "shield.lefthalf.filled"},
		{ID: "surfshark", Name: "Surfshark", LogoURL: wikimedia + "thumb/a/ae/Surfshark_logo.svg/1024px-Surfshark_logo.svg.png", Category: models.CategoryUtilities, DefaultIcon: "waveform.path.ecg"},
		{ID: "proton", Name: "Proton", LogoURL: wikimedia + "thumb/4/4c/Proton_Logo.svg/1024px-Proton_Logo.svg.png", Category: models.CategoryUtilities, DefaultIcon: "lock.fill"},

		// Software
		{ID: "microsoft365", Name: "Microsoft 365", LogoURL: wikimedia + "thumb/d/df/Microsoft_Office_logo_%282012-2019%29.svg/1024px-Microsoft_Office_logo_%282012-2019%29.svg.png", Category: models.CategoryProductivity, DefaultIcon: "doc.plaintext.fill"},
		{ID: "adobe", Name: "Adobe Creative Cloud", LogoURL: wikimedia + "thumb/0/06/Adobe_Creative_Cloud_logo.svg/1024px-Adobe_Creative_Cloud_logo.svg.png", Category: models.CategoryProductivity, DefaultIcon: "camera.macro"},
		{ID: "notion", Name: "Notion", LogoURL: wikimedia + "thumb/4/45/Notion_app_logo.svg/1024px-Notion_app_logo.svg.png", Category: models.CategoryProductivity, DefaultIcon: "note.text"},
		{ID: "canva", Name: "Canva", LogoURL: wikimedia + "thumb/0/08/Canva_icon_2021.svg/1024px-Canva_icon_2021.svg.png", Category: models.CategoryProductivity, DefaultIcon: "photo.stack.fill"},
		{ID: "dropbox", Name: "Dropbox", LogoURL: wikimedia + "thumb/7/78/Dropbox_Icon.svg/1024px-Dropbox_Icon.svg.png", Category: models.CategoryUtilities, DefaultIcon: "archivebox.fill"},
		{ID: "slack", Name: "Slack", LogoURL: wikimedia + "thumb/d/d5/Slack_icon_2019.svg/1024px-Slack_icon_2019.svg.png", Category: models.CategoryProductivity, DefaultIcon: "bubble.left.and.bubble.right.fill"},
		{ID: "zoom", Name: "Zoom", LogoURL: wikimedia + "thumb/e/e4/Zoom_Communications_Logo.svg/1024px-Zoom_Communications_Logo.svg.png", Category: models.CategoryProductivity, DefaultIcon: "video.circle.fill"},
		{ID: "apple_one", Name: "Apple One", LogoURL: wikimedia + "thumb/f/fa/Apple_logo_black.svg/1024px-Apple_logo_black.svg.png", Category: models.CategoryProductivity, DefaultIcon: "apple.logo"},

		// Gaming
		{ID: "playstation", Name: "PS Plus", LogoURL: wikimedia + "thumb/4/4e/Playstation_logo_colour.svg/1024px-Playstation_logo_colour.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "gamecontroller.fill"},
		{ID: "xbox", Name: "Xbox Game Pass", LogoURL: wikimedia + "thumb/f/f9/Xbox_one_logo.svg/1024px-Xbox_one_logo.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "gamecontroller"},
		{ID: "nintendo", Name: "Nintendo Switch Online", LogoURL: wikimedia + "thumb/3/38/Nintendo_switch_logo.svg/1024px-Nintendo_switch_logo.svg.png", Category: models.CategoryEntertainment, DefaultIcon: "gamecontroller.fill"},
	}
}

// fb and ig point at providers that are not in the table yet.
func builtinAliases() map[string]string {
	return map[string]string{
		"yt":     "youtube",
		"nf":     "netflix",
		"sp":     "spotify",
		"gpt":    "chatgpt",
		"ps":     "playstation",
		"ms":     "microsoft365",
		"office": "microsoft365",
		"fb":     "facebook",
		"ig":     "instagram",
	}
}
