package activity

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticCookies string

func (s staticCookies) CookieHeader() (string, error) {
	return string(s), nil
}

func TestListParsesEnvelope(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).Unix()
	var gotCookie, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/list/v2/", r.URL.Path)
		gotCookie = r.Header.Get("Cookie")
		gotQuery = r.URL.RawQuery
		fmt.Fprintf(w, `{"code":0,"message":"success","data":{"activity_list":[
			{"activity_id":101,"title":"秋日征文","hashtag_name":"秋日","activity_end_time":%d},
			{"activity_id":102,"title":"已结束的活动","activity_end_time":1}
		]}}`, future)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, staticCookies("sessionid=abc; uid_tt=def"))
	acts, err := f.List(context.Background(), ListOptions{})
	require.NoError(t, err)

	// the ended campaign is filtered out
	require.Len(t, acts, 1)
	require.Equal(t, int64(101), acts[0].ActivityID)
	require.Equal(t, "秋日征文", acts[0].Title)
	require.Equal(t, "101", acts[0].ID())

	require.Equal(t, "sessionid=abc; uid_tt=def", gotCookie)
	require.Contains(t, gotQuery, "app_id=1231")
	require.Contains(t, gotQuery, "biz_id=1")
	require.Contains(t, gotQuery, "act_status=0")
	require.Contains(t, gotQuery, "part_status=0")
}

func TestListIncludeEnded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"data":{"activity_list":[
			{"activity_id":1,"activity_end_time":1},
			{"activity_id":2,"activity_end_time":0}
		]}}`)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, staticCookies(""))
	acts, err := f.List(context.Background(), ListOptions{IncludeEnded: true})
	require.NoError(t, err)
	require.Len(t, acts, 2)
}

func TestListCategoryParam(t *testing.T) {
	var gotCategory string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCategory = r.URL.Query().Get("category")
		fmt.Fprint(w, `{"code":0,"data":{"activity_list":[]}}`)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, staticCookies(""))
	_, err := f.List(context.Background(), ListOptions{Category: "美食"})
	require.NoError(t, err)
	require.Equal(t, "美食", gotCategory)
}

func TestListAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":4001,"message":"not logged in"}`)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, staticCookies(""))
	_, err := f.List(context.Background(), ListOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "4001")
	require.Contains(t, err.Error(), "not logged in")
}

func TestListHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, staticCookies(""))
	_, err := f.List(context.Background(), ListOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get_all_category/", r.URL.Path)
		fmt.Fprint(w, `{"code":0,"data":[{"name":"美食"},{"name":"旅行"},{"name":""}]}`)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, staticCookies(""))
	cats, err := f.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"全部", "美食", "旅行"}, cats)
}
