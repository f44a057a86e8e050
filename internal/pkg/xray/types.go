package xray

// clientRecord is the wire shape of a single inbound client, matching the
// 3x-ui admin API's client record (§4.3: uuid, email, enabled, flow,
// inboundId, expiryTime).
type clientRecord struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Enable     bool   `json:"enable"`
	Flow       string `json:"flow,omitempty"`
	InboundID  int    `json:"-"`
	ExpiryTime int64  `json:"expiryTime"`
}

type addClientsRequest struct {
	InboundID int            `json:"inbound_id"`
	Settings  clientSettings `json:"settings"`
}

type clientSettings struct {
	Clients []clientRecord `json:"clients"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

type inboundResponse struct {
	Success bool          `json:"success"`
	Obj     inboundRecord `json:"obj"`
}

type inboundRecord struct {
	Remark        string `json:"remark"`
	Port          int    `json:"port"`
	StreamSettings string `json:"streamSettings"`
}

type onlineClientsResponse struct {
	Success bool     `json:"success"`
	Obj     []string `json:"obj"`
}

// realitySettings is the subset of inbound.streamSettings this component
// needs to build a vless:// connection string (§4.3).
type realitySettings struct {
	RealitySettings struct {
		Settings struct {
			PublicKey   string `json:"publicKey"`
			Fingerprint string `json:"fingerprint"`
		} `json:"settings"`
		ServerNames []string `json:"serverNames"`
		ShortIDs    []string `json:"shortIds"`
	} `json:"realitySettings"`
}
