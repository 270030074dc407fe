package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"health-record-sharing/internal/router"
)

type userBody struct {
	ID         string  `json:"id"`
	Role       string  `json:"role"`
	Name       string  `json:"name"`
	HealthCard *string `json:"healthCard"`
}

type requestBody struct {
	ID            string          `json:"id"`
	DoctorName    string          `json:"doctorName"`
	Status        string          `json:"status"`
	Reasons       []string        `json:"reasons"`
	AccessType    *string         `json:"accessType"`
	Permissions   map[string]bool `json:"permissions"`
	DurationHours *int            `json:"durationHours"`
}

type documentBody struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	StoredFileName string `json:"storedFileName"`
	UploadedByName string `json:"uploadedByName"`
	UploadDate     string `json:"uploadDate"`
	URL            string `json:"url"`
	SharingSummary string `json:"sharingSummary"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	h, err := router.NewRouter(router.Options{UploadsDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_RequestApproveView(t *testing.T) {
	ts := newServer(t)

	patient := login(t, ts.URL, "patient", "Ana", "ana@mail.test", "HC1")
	doctor := login(t, ts.URL, "doctor", "Dr. House", "house@clinic.test", "")

	// 1) Paciente sube un documento: solo lo ve él
	doc := upload(t, ts.URL, "HC1", patient.ID, "lab report.pdf", "pdf-bytes")
	if doc.Name != "lab report.pdf" || doc.UploadedByName != "Ana" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if !strings.HasSuffix(doc.StoredFileName, "-lab_report.pdf") || doc.URL != "/uploads/"+doc.StoredFileName {
		t.Fatalf("unexpected stored name/url: %+v", doc)
	}

	docs := patientDocuments(t, ts.URL, patient.ID)
	if len(docs) != 1 || docs[0].SharingSummary != "Only you can view this." {
		t.Fatalf("expected one private document, got %+v", docs)
	}

	// 2) Sin aprobación el médico recibe 403
	{
		st, body := doReq(t, ts.URL, "GET", "/api/doctor/documents?doctorId="+doctor.ID+"&patientHealthCard=HC1", "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before approval, got %d body=%s", st, string(body))
		}
		if msg := errorMessage(t, body); msg != "No approved access for this patient" {
			t.Fatalf("unexpected error message %q", msg)
		}
	}

	// 3) Médico pide acceso; el paciente lo ve pending sin grant
	reqID := createRequest(t, ts.URL, doctor.ID, "HC1", []string{" second-opinion ", "second-opinion", "", "surgery"})
	{
		items := patientRequests(t, ts.URL, patient.ID)
		if len(items) != 1 {
			t.Fatalf("expected 1 request, got %d", len(items))
		}
		got := items[0]
		if got.ID != reqID || got.Status != "pending" || got.DoctorName != "Dr. House" {
			t.Fatalf("unexpected summary: %+v", got)
		}
		if got.AccessType != nil || got.Permissions != nil {
			t.Fatalf("pending request must not carry grant fields: %+v", got)
		}
		if strings.Join(got.Reasons, ",") != "second-opinion,surgery" {
			t.Fatalf("unexpected reasons: %v", got.Reasons)
		}
	}

	// 4) Paciente aprueba permanente y sin download: la visibilidad es binaria
	{
		st, body := doReq(t, ts.URL, "POST", "/api/patient/requests/"+reqID+"/respond", patient.ID, map[string]any{
			"approve":     true,
			"accessType":  "permanent",
			"permissions": map[string]bool{"view": true, "download": false},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
		var got requestBody
		_ = json.Unmarshal(body, &got)
		if got.Status != "approved" || got.AccessType == nil || *got.AccessType != "permanent" {
			t.Fatalf("unexpected approved request: %s", string(body))
		}
		if got.DurationHours != nil {
			t.Fatalf("permanent access must not carry durationHours: %s", string(body))
		}
		if got.Permissions["download"] {
			t.Fatalf("expected download=false to be stored: %s", string(body))
		}
	}

	// 5) El médico ya ve los documentos, y sigue viéndolos
	for i := 0; i < 2; i++ {
		st, body := doReq(t, ts.URL, "GET", "/api/doctor/documents?doctorId="+doctor.ID+"&patientHealthCard=HC1", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 after approval, got %d body=%s", st, string(body))
		}
		var items []documentBody
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0].ID != doc.ID {
			t.Fatalf("unexpected doctor listing: %s", string(body))
		}
	}

	// 6) El paciente ve con quién comparte
	docs = patientDocuments(t, ts.URL, patient.ID)
	if docs[0].SharingSummary != "Shared with Dr. House" {
		t.Fatalf("unexpected sharing summary %q", docs[0].SharingSummary)
	}

	// 7) Responder de nuevo no cambia nada
	{
		st, body := doReq(t, ts.URL, "POST", "/api/patient/requests/"+reqID+"/respond", patient.ID, map[string]any{"approve": false})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 re-respond, got %d body=%s", st, string(body))
		}
		items := patientRequests(t, ts.URL, patient.ID)
		if items[0].Status != "approved" {
			t.Fatalf("status changed after re-respond: %+v", items[0])
		}
	}
}

func TestHTTP_DeniedRequestKeepsDoctorOut(t *testing.T) {
	ts := newServer(t)

	patient := login(t, ts.URL, "patient", "Ana", "ana@mail.test", "HC1")
	doctor := login(t, ts.URL, "doctor", "Dr. House", "house@clinic.test", "")

	reqID := createRequest(t, ts.URL, doctor.ID, "HC1", nil)

	st, body := doReq(t, ts.URL, "POST", "/api/patient/requests/"+reqID+"/respond", patient.ID, map[string]any{"approve": false})
	if st != http.StatusOK {
		t.Fatalf("expected 200 deny, got %d body=%s", st, string(body))
	}
	var denied requestBody
	_ = json.Unmarshal(body, &denied)
	if denied.Status != "denied" || denied.AccessType != nil || denied.Permissions != nil || denied.DurationHours != nil {
		t.Fatalf("unexpected denied request: %s", string(body))
	}

	// la denegación es terminal
	st, _ = doReq(t, ts.URL, "POST", "/api/patient/requests/"+reqID+"/respond", patient.ID, map[string]any{"approve": true})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 approving a denied request, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/api/doctor/documents?doctorId="+doctor.ID+"&patientHealthCard=HC1", "", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 after denial, got %d", st)
	}

	// un pedido nuevo no se fusiona con el anterior y arranca pending
	second := createRequest(t, ts.URL, doctor.ID, "HC1", nil)
	if second == reqID {
		t.Fatalf("expected a new request id")
	}
	items := patientRequests(t, ts.URL, patient.ID)
	if len(items) != 2 || items[0].ID != reqID || items[1].Status != "pending" {
		t.Fatalf("unexpected requests: %+v", items)
	}

	// aprobar con defaults: temporary, 48h
	st, body = doReq(t, ts.URL, "POST", "/api/patient/requests/"+second+"/respond", patient.ID, map[string]any{"approve": true})
	if st != http.StatusOK {
		t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
	}
	var approved requestBody
	_ = json.Unmarshal(body, &approved)
	if approved.AccessType == nil || *approved.AccessType != "temporary" || approved.DurationHours == nil || *approved.DurationHours != 48 {
		t.Fatalf("unexpected defaults: %s", string(body))
	}
	if !approved.Permissions["view"] || !approved.Permissions["download"] || approved.Permissions["upload"] || !approved.Permissions["annotate"] || approved.Permissions["imaging"] {
		t.Fatalf("unexpected default permissions: %v", approved.Permissions)
	}
}

func TestHTTP_CreateRequest_Validation(t *testing.T) {
	ts := newServer(t)

	doctor := login(t, ts.URL, "doctor", "", "house@clinic.test", "")
	if doctor.Name != "Doctor" {
		t.Fatalf("expected default doctor name, got %q", doctor.Name)
	}

	cases := []struct {
		name    string
		payload map[string]any
		want    int
	}{
		{"missing fields", map[string]any{"doctorId": doctor.ID}, http.StatusBadRequest},
		{"unknown health card", map[string]any{"doctorId": doctor.ID, "patientHealthCard": "NOPE"}, http.StatusBadRequest},
		{"unknown doctor", map[string]any{"doctorId": "ghost", "patientHealthCard": "NOPE"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		st, body := doReq(t, ts.URL, "POST", "/api/doctor/requests", "", tc.payload)
		if st != tc.want {
			t.Fatalf("%s: expected %d, got %d body=%s", tc.name, tc.want, st, string(body))
		}
	}

	st, _ := doReq(t, ts.URL, "POST", "/api/patient/requests/does-not-exist/respond", "", map[string]any{"approve": true})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 unknown request, got %d", st)
	}
}

func TestHTTP_Login_IsIdempotentAndBackfillsHealthCard(t *testing.T) {
	ts := newServer(t)

	first := login(t, ts.URL, "patient", "Ana", "Ana@Mail.test", "")
	if first.HealthCard == nil || *first.HealthCard != "" {
		t.Fatalf("expected empty health card, got %+v", first)
	}

	second := login(t, ts.URL, "PATIENT", "Other", "ana@mail.TEST", "HC7")
	if second.ID != first.ID {
		t.Fatalf("expected same user, got %s vs %s", second.ID, first.ID)
	}
	if second.HealthCard == nil || *second.HealthCard != "HC7" {
		t.Fatalf("expected back-filled health card, got %+v", second)
	}

	// mismo email con otro rol es otro usuario
	doctor := login(t, ts.URL, "doctor", "", "ana@mail.test", "")
	if doctor.ID == first.ID || doctor.HealthCard != nil {
		t.Fatalf("unexpected doctor: %+v", doctor)
	}

	st, _ := doReq(t, ts.URL, "POST", "/api/login", "", map[string]any{"role": "nurse", "email": "x@y"})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid role, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "POST", "/api/login", "", map[string]any{"role": "patient"})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 missing email, got %d", st)
	}
}

func TestHTTP_Upload_UnknownHealthCardAndServing(t *testing.T) {
	ts := newServer(t)

	patient := login(t, ts.URL, "patient", "Ana", "ana@mail.test", "HC1")

	st, body := uploadRaw(t, ts.URL, "HC404", patient.ID, "x.txt", "x")
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 unknown health card, got %d body=%s", st, string(body))
	}

	// uploader desconocido => "Unknown"
	doc := upload(t, ts.URL, "HC1", "someone-else", "notes.txt", "hello")
	if doc.UploadedByName != "Unknown" {
		t.Fatalf("expected Unknown uploader, got %q", doc.UploadedByName)
	}

	res, err := http.Get(ts.URL + doc.URL)
	if err != nil {
		t.Fatalf("get upload: %v", err)
	}
	defer res.Body.Close()
	got, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK || string(got) != "hello" {
		t.Fatalf("expected stored bytes, got %d %q", res.StatusCode, string(got))
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health: %d %s", st, string(body))
	}
}

func login(t *testing.T, baseURL, role, name, email, healthCard string) userBody {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/login", "", map[string]any{
		"role":       role,
		"name":       name,
		"email":      email,
		"healthCard": healthCard,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}

	var u userBody
	_ = json.Unmarshal(body, &u)
	if u.ID == "" {
		t.Fatalf("login: missing id body=%s", string(body))
	}
	return u
}

func createRequest(t *testing.T, baseURL, doctorID, healthCard string, reasons []string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/doctor/requests", doctorID, map[string]any{
		"doctorId":          doctorID,
		"patientHealthCard": healthCard,
		"reasons":           reasons,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 create request, got %d body=%s", st, string(body))
	}

	var resp requestBody
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" || resp.Status != "pending" {
		t.Fatalf("create request: unexpected body=%s", string(body))
	}
	return resp.ID
}

func patientRequests(t *testing.T, baseURL, patientID string) []requestBody {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/api/patient/requests?patientId="+patientID, patientID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 listing requests, got %d body=%s", st, string(body))
	}
	var out []requestBody
	_ = json.Unmarshal(body, &out)
	return out
}

func patientDocuments(t *testing.T, baseURL, patientID string) []documentBody {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/api/patient/documents?patientId="+patientID, patientID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 listing documents, got %d body=%s", st, string(body))
	}
	var out []documentBody
	_ = json.Unmarshal(body, &out)
	return out
}

func upload(t *testing.T, baseURL, healthCard, uploaderID, fileName, content string) documentBody {
	t.Helper()

	st, body := uploadRaw(t, baseURL, healthCard, uploaderID, fileName, content)
	if st != http.StatusOK {
		t.Fatalf("expected 200 upload, got %d body=%s", st, string(body))
	}
	var d documentBody
	_ = json.Unmarshal(body, &d)
	return d
}

func uploadRaw(t *testing.T, baseURL, healthCard, uploaderID, fileName, content string) (int, []byte) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte(content))
	_ = mw.WriteField("ownerHealthCard", healthCard)
	_ = mw.WriteField("uploadedById", uploaderID)
	_ = mw.Close()

	req, err := http.NewRequest("POST", baseURL+"/api/documents/upload", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("error body is not json: %s", string(body))
	}
	return resp.Error
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
