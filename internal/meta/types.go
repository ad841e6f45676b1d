package meta

// Profile is the authenticating user's Graph profile.
type Profile struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}

// Page is a page the user administers, together with its page-scoped
// access token and the linked Instagram business account when present.
type Page struct {
	ID              string
	Name            string
	AccessToken     string
	AvatarURL       string
	InstagramID     string
	OwnerBusinessID string
}

// ContactProfile is the public profile of a message sender, fetched
// with the page access token.
type ContactProfile struct {
	Name      string
	AvatarURL string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type debugTokenResponse struct {
	Data struct {
		AppID   string   `json:"app_id"`
		IsValid bool     `json:"is_valid"`
		Scopes  []string `json:"scopes"`
	} `json:"data"`
}

type profileResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

type accountsResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
		Picture     struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
		InstagramBusinessAccount *struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type ownerBusinessResponse struct {
	ID            string `json:"id"`
	OwnerBusiness *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"owner_business"`
}

type contactProfileResponse struct {
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic"`
}

type subscribeResponse struct {
	Success bool `json:"success"`
}
