package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	abs "github.com/microsoft/kiota-abstractions-go"
	"github.com/microsoft/kiota-abstractions-go/authentication"
	nethttplibrary "github.com/microsoft/kiota-http-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	graphmodels "github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/microsoftgraph/msgraph-sdk-go/sites"

	"github.com/timebank/backend/internal/models"
)

// DefaultGraphBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// GraphError is a non-2xx response from the list store.
type GraphError struct {
	Status  int
	Code    string
	Message string
}

func (e *GraphError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("graph: status %d", e.Status)
	}
	return fmt.Sprintf("graph: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// graphError converts SDK failures to *GraphError when the service answered.
func graphError(err error) error {
	var oe *odataerrors.ODataError
	if errors.As(err, &oe) {
		gerr := &GraphError{Status: oe.ResponseStatusCode}
		if main := oe.GetErrorEscaped(); main != nil {
			gerr.Code = deref(main.GetCode())
			gerr.Message = deref(main.GetMessage())
		}
		return gerr
	}
	var ae *abs.ApiError
	if errors.As(err, &ae) {
		return &GraphError{Status: ae.ResponseStatusCode, Message: ae.Message}
	}
	return err
}

func isNotFound(err error) bool {
	var gerr *GraphError
	return errors.As(err, &gerr) && gerr.Status == http.StatusNotFound
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListClient talks to the list items API of one SharePoint site through the Graph SDK.
type ListClient struct {
	graph   *msgraphsdk.GraphServiceClient
	adapter *msgraphsdk.GraphRequestAdapter
	siteID  string
}

// NewListClient returns a client for siteID. httpClient must attach credentials (see cmd/api
// for the OAuth2 client-credentials wiring); nil means an unauthenticated client. An empty
// baseURL means DefaultGraphBaseURL.
func NewListClient(httpClient *http.Client, baseURL, siteID string) (*ListClient, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultGraphBaseURL
	}
	parent := httpClient.Transport
	if parent == nil {
		parent = http.DefaultTransport
	}
	// Credentials come from httpClient. List operations are never retried, so the SDK's
	// default middleware is replaced by query name decoding alone.
	hc := *httpClient
	hc.Transport = nethttplibrary.NewCustomTransportWithParentTransport(parent, nethttplibrary.NewParametersNameDecodingHandler())

	adapter, err := msgraphsdk.NewGraphRequestAdapterWithParseNodeFactoryAndSerializationWriterFactoryAndHttpClient(
		&authentication.AnonymousAuthenticationProvider{}, nil, nil, &hc)
	if err != nil {
		return nil, fmt.Errorf("graph request adapter: %w", err)
	}
	graph := msgraphsdk.NewGraphServiceClient(adapter)
	adapter.SetBaseUrl(strings.TrimRight(baseURL, "/"))
	return &ListClient{graph: graph, adapter: adapter, siteID: siteID}, nil
}

// listItem is one list row with its fields as JSON, ready for the record structs.
type listItem struct {
	ID     string
	Fields json.RawMessage
}

type itemQuery struct {
	columns []string
	filter  string
	orderBy string
}

// odataString quotes s as an OData string literal.
func odataString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func expandFields(columns []string) []string {
	return []string{"fields($select=" + strings.Join(columns, ",") + ")"}
}

// preferHeaders opts into filtering on non-indexed custom columns.
func preferHeaders() *abs.RequestHeaders {
	h := abs.NewRequestHeaders()
	h.Add("Prefer", "HonorNonIndexedQueriesWarningMayFailRandomly")
	return h
}

func (c *ListClient) items(list string) *sites.ItemListsItemItemsRequestBuilder {
	return c.graph.Sites().BySiteId(c.siteID).Lists().ByListId(list).Items()
}

// fieldSet converts a record struct to the SDK's field bag.
func fieldSet(fields any) (graphmodels.FieldValueSetable, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	fs := graphmodels.NewFieldValueSet()
	fs.SetAdditionalData(data)
	return fs, nil
}

func toListItem(it graphmodels.ListItemable) (listItem, error) {
	out := listItem{ID: deref(it.GetId()), Fields: json.RawMessage("{}")}
	fs := it.GetFields()
	if fs == nil {
		return out, nil
	}
	data := make(map[string]any, len(fs.GetAdditionalData()))
	for k, v := range fs.GetAdditionalData() {
		data[k] = plainValue(v)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("encode item %s fields: %w", out.ID, err)
	}
	out.Fields = b
	return out, nil
}

// plainValue unwraps the pointers and untyped nodes the SDK stores in additional data.
func plainValue(v any) any {
	if n, ok := v.(interface{ GetValue() any }); ok {
		return plainValue(n.GetValue())
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return plainValue(rv.Elem().Interface())
	case reflect.Slice:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = plainValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = plainValue(iter.Value().Interface())
		}
		return out
	}
	return v
}

func (c *ListClient) create(ctx context.Context, list string, fields any) (string, error) {
	fs, err := fieldSet(fields)
	if err != nil {
		return "", fmt.Errorf("create %s item: %w", list, err)
	}
	body := graphmodels.NewListItem()
	body.SetFields(fs)
	created, err := c.items(list).Post(ctx, body, nil)
	if err != nil {
		return "", fmt.Errorf("create %s item: %w", list, graphError(err))
	}
	return deref(created.GetId()), nil
}

func (c *ListClient) update(ctx context.Context, list, id string, fields any) error {
	fs, err := fieldSet(fields)
	if err != nil {
		return fmt.Errorf("update %s item %s: %w", list, id, err)
	}
	if _, err := c.items(list).ByListItemId(id).Fields().Patch(ctx, fs, nil); err != nil {
		err = graphError(err)
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update %s item %s: %w", list, id, err)
	}
	return nil
}

func (c *ListClient) query(ctx context.Context, list string, q itemQuery) ([]listItem, error) {
	params := &sites.ItemListsItemItemsRequestBuilderGetQueryParameters{Expand: expandFields(q.columns)}
	if q.filter != "" {
		params.Filter = &q.filter
	}
	if q.orderBy != "" {
		params.Orderby = []string{q.orderBy}
	}
	headers := preferHeaders()
	page, err := c.items(list).Get(ctx, &sites.ItemListsItemItemsRequestBuilderGetRequestConfiguration{
		Headers:         headers,
		QueryParameters: params,
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", list, graphError(err))
	}

	pages, err := msgraphcore.NewPageIterator[graphmodels.ListItemable](page, c.adapter, graphmodels.CreateListItemCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", list, err)
	}
	pages.SetHeaders(headers)

	var (
		items   []listItem
		convErr error
	)
	err = pages.Iterate(ctx, func(it graphmodels.ListItemable) bool {
		li, err := toListItem(it)
		if err != nil {
			convErr = err
			return false
		}
		items = append(items, li)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", list, graphError(err))
	}
	if convErr != nil {
		return nil, convErr
	}
	return items, nil
}

func (c *ListClient) get(ctx context.Context, list, id string, columns []string) (*listItem, error) {
	it, err := c.items(list).ByListItemId(id).Get(ctx, &sites.ItemListsItemItemsListItemItemRequestBuilderGetRequestConfiguration{
		QueryParameters: &sites.ItemListsItemItemsListItemItemRequestBuilderGetQueryParameters{Expand: expandFields(columns)},
	})
	if err != nil {
		err = graphError(err)
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s item %s: %w", list, id, err)
	}
	li, err := toListItem(it)
	if err != nil {
		return nil, err
	}
	return &li, nil
}

func decodeItems[F any, T any](items []listItem, conv func(string, F) *T) ([]*T, error) {
	out := make([]*T, 0, len(items))
	for _, it := range items {
		var f F
		if err := json.Unmarshal(it.Fields, &f); err != nil {
			return nil, fmt.Errorf("decode item %s: %w", it.ID, err)
		}
		out = append(out, conv(it.ID, f))
	}
	return out, nil
}

// NewSharePointGateway returns a Gateway whose collections are SharePoint lists.
func NewSharePointGateway(c *ListClient) *Gateway {
	return &Gateway{
		Mode:        ModeSharePoint,
		TimeEntries: &spTimeEntries{c: c},
		Credits:     &spCredits{c: c},
		Redemptions: &spRedemptions{c: c},
		Benefits:    &spBenefits{c: c},
	}
}

type spTimeEntries struct{ c *ListClient }

func (s *spTimeEntries) Append(ctx context.Context, e *models.TimeEntry) error {
	id, err := s.c.create(ctx, ListTimeEntries, timeEntryToFields(e))
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (s *spTimeEntries) ListByUser(ctx context.Context, userID string) ([]*models.TimeEntry, error) {
	items, err := s.c.query(ctx, ListTimeEntries, itemQuery{
		columns: timeEntryColumns,
		filter:  "fields/UserId eq " + odataString(userID),
		orderBy: "fields/DateLogged desc",
	})
	if err != nil {
		return nil, err
	}
	return decodeItems(items, timeEntryFromFields)
}

func (s *spTimeEntries) Get(ctx context.Context, id string) (*models.TimeEntry, error) {
	item, err := s.c.get(ctx, ListTimeEntries, id, timeEntryColumns)
	if err != nil || item == nil {
		return nil, err
	}
	list, err := decodeItems([]listItem{*item}, timeEntryFromFields)
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

type spCredits struct{ c *ListClient }

func (s *spCredits) GetByUser(ctx context.Context, userID string) (*models.UserCredits, error) {
	items, err := s.c.query(ctx, ListUserCredits, itemQuery{
		columns: userCreditsColumns,
		filter:  "fields/UserId eq " + odataString(userID),
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	list, err := decodeItems(items[:1], userCreditsFromFields)
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

func (s *spCredits) Upsert(ctx context.Context, c *models.UserCredits) error {
	if c.ID != "" {
		return s.c.update(ctx, ListUserCredits, c.ID, userCreditsToUpdate(c))
	}
	id, err := s.c.create(ctx, ListUserCredits, userCreditsToFields(c))
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

type spRedemptions struct{ c *ListClient }

func (s *spRedemptions) Append(ctx context.Context, r *models.RedemptionHistory) error {
	id, err := s.c.create(ctx, ListRedemptionHistory, redemptionToFields(r))
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (s *spRedemptions) ListByUser(ctx context.Context, userID string) ([]*models.RedemptionHistory, error) {
	items, err := s.c.query(ctx, ListRedemptionHistory, itemQuery{
		columns: redemptionColumns,
		filter:  "fields/UserId eq " + odataString(userID),
		orderBy: "fields/DateRedeemed desc",
	})
	if err != nil {
		return nil, err
	}
	return decodeItems(items, redemptionFromFields)
}

func (s *spRedemptions) Get(ctx context.Context, id string) (*models.RedemptionHistory, error) {
	item, err := s.c.get(ctx, ListRedemptionHistory, id, redemptionColumns)
	if err != nil || item == nil {
		return nil, err
	}
	list, err := decodeItems([]listItem{*item}, redemptionFromFields)
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

func (s *spRedemptions) Upsert(ctx context.Context, r *models.RedemptionHistory) error {
	if r.ID == "" {
		return s.Append(ctx, r)
	}
	return s.c.update(ctx, ListRedemptionHistory, r.ID, redemptionToFields(r))
}

type spBenefits struct{ c *ListClient }

func (s *spBenefits) Append(ctx context.Context, b *models.Benefit) error {
	id, err := s.c.create(ctx, ListBenefits, benefitToFields(b))
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (s *spBenefits) ListActive(ctx context.Context) ([]*models.Benefit, error) {
	items, err := s.c.query(ctx, ListBenefits, itemQuery{
		columns: benefitColumns,
		filter:  "fields/IsActive eq 1",
	})
	if err != nil {
		return nil, err
	}
	return decodeItems(items, benefitFromFields)
}
