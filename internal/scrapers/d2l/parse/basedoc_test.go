package parse

import (
	"errors"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

const homeFixture = `<!DOCTYPE html>
<html lang="en" data-timezone='{"name":"Canada - Toronto","identifier":"America/Toronto"}' data-global-context='{"orgUnitId":"6606","userId":"169"}'>
<head>
	<script>var D2L = {};</script>
	<script>
		localStorage.setItem('XSRF.HitCodeSeed', '1');
		localStorage.setItem("XSRF.Token", "Rm9vQmFy123");
	</script>
</head>
<body>
	<d2l-my-courses enrollments-url="https://e1.enrollments.api.brightspace.com/users/169" user-settings-url="x"></d2l-my-courses>
</body>
</html>`

func TestXsrfToken(t *testing.T) {
	token, ok := XsrfToken(homeFixture)
	require.True(t, ok)
	require.Equal(t, "Rm9vQmFy123", token)

	_, ok = XsrfToken(`<html><script>var x = 1;</script></html>`)
	require.False(t, ok)
}

func TestTimezone(t *testing.T) {
	loc, ok := Timezone(homeFixture)
	require.True(t, ok)
	require.Equal(t, "America/Toronto", loc.String())

	loc, ok = Timezone(`<html data-timezone="America/Vancouver"></html>`)
	require.True(t, ok)
	require.Equal(t, "America/Vancouver", loc.String())

	_, ok = Timezone(`<html></html>`)
	require.False(t, ok)
	_, ok = Timezone(`<html data-timezone='{"identifier":"Not/AZone"}'></html>`)
	require.False(t, ok)
}

func TestEnrollmentMarkers(t *testing.T) {
	userId, enrollmentsUrl, err := EnrollmentMarkers(homeFixture)
	require.NoError(t, err)
	require.Equal(t, "169", userId)
	require.Equal(t, "https://e1.enrollments.api.brightspace.com/users/169", enrollmentsUrl)

	userId, _, err = EnrollmentMarkers(`<html><script>D2L.init({"userId": 4242});</script>
		<d2l-my-courses enrollments-url="https://e/users/4242"></d2l-my-courses></html>`)
	require.NoError(t, err)
	require.Equal(t, "4242", userId)

	_, _, err = EnrollmentMarkers(`<html><body>not the home page</body></html>`)
	require.True(t, errors.Is(err, ErrEnrollmentUrl))

	_, _, err = EnrollmentMarkers(`<html><d2l-my-courses enrollments-url="https://e/users/1"></d2l-my-courses></html>`)
	require.True(t, errors.Is(err, ErrUserId))
}
