package d2l

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"valence/internal/scrapers/d2l/parse"
)

const (
	report_client_alerts           = "client.alerts"
	report_client_mark_alerts_read = "client.mark-alerts-read"
	report_client_check_new_alerts = "client.check-new-alerts"
)

// RootOrgUnit is the org unit of the organization home page, its activity
// feed covers every course.
const RootOrgUnit = "6606"

func activityFeedPath(orgUnit, action string) string {
	if orgUnit == "" {
		orgUnit = RootOrgUnit
	}
	return fmt.Sprintf("/d2l/MiniBar/%s/ActivityFeed/%s", orgUnit, action)
}

// Alerts fetches the activity feed entries older than before, a zero
// before fetches the newest entries.
func (c *Client) Alerts(ctx context.Context, orgUnit string, category parse.Category, before time.Time) ([]parse.Alert, error) {
	query := url.Values{}
	query.Set("Category", strconv.Itoa(int(category)))
	query.Set("requestId", strconv.FormatInt(c.nextRequestId(), 10))
	if !before.IsZero() {
		query.Set("lastLoadedTime", strconv.FormatInt(before.UnixMilli(), 10))
	}

	res, err := c.get(ctx, activityFeedPath(orgUnit, "GetAlertsDaylight")+"?"+query.Encode())
	if err != nil {
		c.tel.ReportBroken(report_client_alerts, err, orgUnit, category)
		return nil, err
	}
	html, err := parse.PartialHtml(res.String())
	if err != nil {
		c.tel.ReportBroken(report_client_alerts, err, orgUnit, category)
		return nil, err
	}
	return parse.Alerts(c.tel, html, c.Timezone(ctx))
}

// MarkAlertsRead marks every entry of the feed as read.
func (c *Client) MarkAlertsRead(ctx context.Context, orgUnit string, category parse.Category) error {
	query := url.Values{}
	query.Set("Category", strconv.Itoa(int(category)))
	res, err := c.execute(
		c.Http.R().SetContext(ctx),
		http.MethodPost,
		activityFeedPath(orgUnit, "UpdateAlertsRead")+"?"+query.Encode(),
	)
	if err != nil {
		c.tel.ReportWarning(report_client_mark_alerts_read, err, orgUnit, category)
		return err
	}
	_, err = parse.DecodePartial(res.String())
	if err != nil {
		c.tel.ReportWarning(report_client_mark_alerts_read, err, orgUnit, category)
		return err
	}
	return nil
}

// CheckNewAlerts reports whether the feed has entries the user has not
// seen yet.
func (c *Client) CheckNewAlerts(ctx context.Context, orgUnit string, category parse.Category) (bool, error) {
	query := url.Values{}
	query.Set("Category", strconv.Itoa(int(category)))
	query.Set("requestId", strconv.FormatInt(c.nextRequestId(), 10))
	res, err := c.get(ctx, activityFeedPath(orgUnit, "CheckForNewAlerts")+"?"+query.Encode())
	if err != nil {
		c.tel.ReportWarning(report_client_check_new_alerts, err, orgUnit, category)
		return false, err
	}
	hasNew, err := parse.PartialBool(res.String())
	if err != nil {
		c.tel.ReportWarning(report_client_check_new_alerts, err, orgUnit, category)
		return false, err
	}
	return hasNew, nil
}
