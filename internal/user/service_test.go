package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/security"
)

type mockUserRepo struct {
	findByUserNameFunc func(ctx context.Context, userName string) (*model.User, error)
	updateProfileFunc  func(ctx context.Context, userName, nickname, avatarURL, phone, intro string) (bool, error)
}

func (m *mockUserRepo) FindByUserName(ctx context.Context, userName string) (*model.User, error) {
	return m.findByUserNameFunc(ctx, userName)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, userName, nickname, avatarURL, phone, intro string) (bool, error) {
	return m.updateProfileFunc(ctx, userName, nickname, avatarURL, phone, intro)
}

type mockUploadRepo struct {
	createFunc func(ctx context.Context, upload *model.Upload) error
}

func (m *mockUploadRepo) Create(ctx context.Context, upload *model.Upload) error {
	return m.createFunc(ctx, upload)
}

func (m *mockUploadRepo) FindByID(ctx context.Context, id string) (*model.Upload, error) {
	return nil, nil
}

// allowAllGuard は検証を全て通過させるテスト用ガード。
type allowAllGuard struct{}

func (allowAllGuard) NewSafeClient(timeout time.Duration) *http.Client { return http.DefaultClient }
func (allowAllGuard) ValidateURL(rawURL string) error                  { return nil }

// denyAllGuard は検証を全て拒否するテスト用ガード。
type denyAllGuard struct{}

func (denyAllGuard) NewSafeClient(timeout time.Duration) *http.Client { return http.DefaultClient }
func (denyAllGuard) ValidateURL(rawURL string) error                  { return errors.New("blocked") }

func newTestService(userRepo *mockUserRepo, uploadRepo *mockUploadRepo, guard security.ImageURLGuardService) *Service {
	return NewService(userRepo, uploadRepo, security.NewContentSanitizer(), guard, http.DefaultClient, 1024*1024)
}

// プロフィール取得がパスワードハッシュを消去して返すことを確認
func TestServiceGetProfile(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUserNameFunc: func(ctx context.Context, userName string) (*model.User, error) {
			return &model.User{
				UserName:     "alice",
				PasswordHash: "secret-hash",
				Nickname:     "小爱",
			}, nil
		},
	}
	service := newTestService(userRepo, &mockUploadRepo{}, allowAllGuard{})

	profile, err := service.GetProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.PasswordHash != "" {
		t.Error("password hash must be cleared")
	}
	if profile.Nickname != "小爱" {
		t.Errorf("unexpected nickname %q", profile.Nickname)
	}
}

// 存在しないユーザーのプロフィール取得がNotFoundエラーになることを確認
func TestServiceGetProfileNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUserNameFunc: func(ctx context.Context, userName string) (*model.User, error) {
			return nil, nil
		},
	}
	service := newTestService(userRepo, &mockUploadRepo{}, allowAllGuard{})

	_, err := service.GetProfile(context.Background(), "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Fatalf("expected user not found error, got %v", err)
	}
}

// プロフィール更新でテキスト項目がサニタイズされることを確認
func TestServiceUpdateProfileSanitizes(t *testing.T) {
	var gotNickname, gotIntro string
	userRepo := &mockUserRepo{
		updateProfileFunc: func(ctx context.Context, userName, nickname, avatarURL, phone, intro string) (bool, error) {
			gotNickname = nickname
			gotIntro = intro
			return true, nil
		},
	}
	service := newTestService(userRepo, &mockUploadRepo{}, allowAllGuard{})

	err := service.UpdateProfile(context.Background(), "alice", ProfileUpdate{
		Nickname: `小爱<script>alert(1)</script>`,
		Intro:    `<p>你好</p><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if gotNickname != "小爱" {
		t.Errorf("expected sanitized nickname, got %q", gotNickname)
	}
	if gotIntro != "<p>你好</p>" {
		t.Errorf("expected sanitized intro, got %q", gotIntro)
	}
}

// ローカルパスのアバターURLが取得処理なしでそのまま保存されることを確認
func TestServiceUpdateProfileLocalAvatarPassthrough(t *testing.T) {
	var gotAvatar string
	userRepo := &mockUserRepo{
		updateProfileFunc: func(ctx context.Context, userName, nickname, avatarURL, phone, intro string) (bool, error) {
			gotAvatar = avatarURL
			return true, nil
		},
	}
	uploadRepo := &mockUploadRepo{
		createFunc: func(ctx context.Context, upload *model.Upload) error {
			t.Error("local avatar path must not trigger an upload")
			return nil
		},
	}
	service := newTestService(userRepo, uploadRepo, denyAllGuard{})

	err := service.UpdateProfile(context.Background(), "alice", ProfileUpdate{
		AvatarURL: "/api/uploads/abc-123",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if gotAvatar != "/api/uploads/abc-123" {
		t.Errorf("expected local path to pass through, got %q", gotAvatar)
	}
}

// リモートアバターが取得・保存され、URLがローカルパスに書き換わることを確認
func TestServiceUpdateProfileImportsRemoteAvatar(t *testing.T) {
	imageBody := []byte{0x89, 'P', 'N', 'G'}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(imageBody)
	}))
	defer ts.Close()

	var stored *model.Upload
	uploadRepo := &mockUploadRepo{
		createFunc: func(ctx context.Context, upload *model.Upload) error {
			stored = upload
			return nil
		},
	}
	var gotAvatar string
	userRepo := &mockUserRepo{
		updateProfileFunc: func(ctx context.Context, userName, nickname, avatarURL, phone, intro string) (bool, error) {
			gotAvatar = avatarURL
			return true, nil
		},
	}
	service := newTestService(userRepo, uploadRepo, allowAllGuard{})

	err := service.UpdateProfile(context.Background(), "alice", ProfileUpdate{
		AvatarURL: ts.URL + "/avatar.png",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if stored == nil {
		t.Fatal("expected avatar to be stored")
	}
	if stored.ContentType != "image/png" {
		t.Errorf("unexpected content type %q", stored.ContentType)
	}
	if string(stored.Data) != string(imageBody) {
		t.Error("stored data does not match fetched body")
	}
	if gotAvatar != "/api/uploads/"+stored.ID {
		t.Errorf("expected avatar URL to be rewritten to local path, got %q", gotAvatar)
	}
}

// ガードに拒否されたアバターURLがBlockedURLエラーになり、
// プロフィールが更新されないことを確認
func TestServiceUpdateProfileBlockedAvatarURL(t *testing.T) {
	userRepo := &mockUserRepo{
		updateProfileFunc: func(ctx context.Context, userName, nickname, avatarURL, phone, intro string) (bool, error) {
			t.Error("blocked URL must not update the profile")
			return true, nil
		},
	}
	service := newTestService(userRepo, &mockUploadRepo{}, denyAllGuard{})

	err := service.UpdateProfile(context.Background(), "alice", ProfileUpdate{
		AvatarURL: "http://169.254.169.254/latest/meta-data/",
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeBlockedURL {
		t.Fatalf("expected blocked URL error, got %v", err)
	}
}

// 画像以外のContent-Typeのリモートアバターが拒否されることを確認
func TestServiceUpdateProfileRejectsNonImageAvatar(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	service := newTestService(&mockUserRepo{}, &mockUploadRepo{}, allowAllGuard{})

	err := service.UpdateProfile(context.Background(), "alice", ProfileUpdate{
		AvatarURL: ts.URL + "/page",
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnsupportedFile {
		t.Fatalf("expected unsupported file error, got %v", err)
	}
}

// 存在しないユーザーの更新がNotFoundエラーになることを確認
func TestServiceUpdateProfileUserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		updateProfileFunc: func(ctx context.Context, userName, nickname, avatarURL, phone, intro string) (bool, error) {
			return false, nil
		},
	}
	service := newTestService(userRepo, &mockUploadRepo{}, allowAllGuard{})

	err := service.UpdateProfile(context.Background(), "missing", ProfileUpdate{Nickname: "x"})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Fatalf("expected user not found error, got %v", err)
	}
}
