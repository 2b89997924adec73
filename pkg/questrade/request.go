package questrade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"iqtrade/pkg/model"
)

// params are the query parameters of one call. Values are encoded by
// encodeQuery; nil values are skipped.
type params map[string]any

// envelope is the top level JSON object of a response.
type envelope struct {
	path   string
	fields map[string]json.RawMessage
}

// decode unmarshals the value under key into v. A missing key is a protocol
// error regardless of the HTTP status.
func (e envelope) decode(key string, v any) error {
	raw, ok := e.fields[key]
	if !ok {
		return &ProtocolError{Path: e.path, Key: key}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ProtocolError{Path: e.path, Key: key, Err: err}
	}
	return nil
}

// request performs one authenticated call against <api_server>/v1/<path>.
func (c *Client) request(ctx context.Context, method, path string, query params, body any) (envelope, error) {
	if !c.authenticated() {
		return envelope{}, ErrNotAuthenticated
	}
	path = strings.TrimPrefix(path, "/")

	values, err := encodeQuery(query)
	if err != nil {
		return envelope{}, err
	}

	r := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.AuthorizationHeader())
	if len(values) > 0 {
		r.SetQueryParamsFromValues(values)
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return envelope{}, errors.Wrapf(err, "encode %s body", path)
		}
		r.SetHeader("Content-Type", "application/json").SetBody(data)
	}

	log := c.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"method":     method,
		"path":       path,
	})
	start := time.Now()
	resp, err := r.Execute(method, c.apiServer+"/"+apiVersion+"/"+path)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return envelope{}, &TransportError{Method: method, Path: path, Err: err}
	}
	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode(),
		"elapsed": time.Since(start),
	}).Debug("request done")

	if !resp.IsSuccess() {
		return envelope{}, &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &fields); err != nil {
		return envelope{}, &ProtocolError{Path: path, Err: err}
	}
	if fields == nil {
		return envelope{}, &ProtocolError{Path: path, Err: errors.New("response is not a JSON object")}
	}
	return envelope{path: path, fields: fields}, nil
}

func encodeQuery(query params) (url.Values, error) {
	values := url.Values{}
	for key, v := range query {
		if v == nil {
			continue
		}
		s, err := encodeValue(v)
		if err != nil {
			return nil, errors.Wrapf(err, "query parameter %s", key)
		}
		values.Set(key, s)
	}
	return values, nil
}

func encodeValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case time.Time:
		return model.FormatTime(t), nil
	case []int:
		parts := make([]string, len(t))
		for i, id := range t {
			parts[i] = strconv.Itoa(id)
		}
		return strings.Join(parts, ","), nil
	case []string:
		return strings.Join(t, ","), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	return "", fmt.Errorf("unsupported type %T", v)
}
