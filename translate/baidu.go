package translate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultBaiduEndpoint is the Baidu general translation API
const DefaultBaiduEndpoint = "https://api.fanyi.baidu.com/api/trans/vip/translate"

const (
	saltMin = 32768
	saltMax = 65536
)

// baiduBackend signs each request with an MD5 digest of the shared secret
type baiduBackend struct {
	appID    string
	secret   string
	endpoint string
	client   *http.Client
	salt     func() int
}

type baiduResponse struct {
	From        string `json:"from"`
	To          string `json:"to"`
	TransResult []struct {
		Src string `json:"src"`
		Dst string `json:"dst"`
	} `json:"trans_result"`
	ErrorCode errorCode `json:"error_code"`
	ErrorMsg  string    `json:"error_msg"`
}

// errorCode accepts both the quoted and the bare numeric form Baidu emits
type errorCode string

func (c *errorCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = errorCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = errorCode(n.String())
	return nil
}

// Sign computes the Baidu request signature: the hex MD5 of
// appID + text + salt + secret over their UTF-8 bytes.
func Sign(appID, text string, salt int, secret string) string {
	sum := md5.Sum([]byte(appID + text + strconv.Itoa(salt) + secret))
	return hex.EncodeToString(sum[:])
}

func (b *baiduBackend) requestURL(req request, salt int) (string, error) {
	u, err := url.Parse(b.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: invalid endpoint %q: %v", ErrTransport, b.endpoint, err)
	}

	q := url.Values{}
	q.Set("appid", b.appID)
	q.Set("q", req.text)
	q.Set("from", req.sourceLang)
	q.Set("to", req.targetLang)
	q.Set("salt", strconv.Itoa(salt))
	q.Set("sign", Sign(b.appID, req.text, salt, b.secret))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (b *baiduBackend) translate(ctx context.Context, req request) (string, error) {
	rawURL, err := b.requestURL(req, b.salt())
	if err != nil {
		return "", err
	}

	status, body, err := get(ctx, b.client, Baidu, req.id, rawURL)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrTransport, status)
	}

	var result baiduResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResponseParse, err)
	}

	// Baidu reports success without an error code; "52000" is its explicit success code
	if result.ErrorCode != "" && result.ErrorCode != "52000" {
		return "", fmt.Errorf("%w: baidu %s: %s", ErrBackend, result.ErrorCode, result.ErrorMsg)
	}

	if len(result.TransResult) == 0 {
		return "", ErrNoTranslation
	}

	return result.TransResult[0].Dst, nil
}
