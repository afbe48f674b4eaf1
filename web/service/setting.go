package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/notfakie/jellyseerr/database"
	"github.com/notfakie/jellyseerr/database/model"
	"github.com/notfakie/jellyseerr/logger"
	"github.com/notfakie/jellyseerr/util/common"
	"github.com/notfakie/jellyseerr/util/random"

	"gorm.io/gorm"
)

// Media server types.
const (
	MediaServerPlex     = "plex"
	MediaServerJellyfin = "jellyfin"
	MediaServerEmby     = "emby"
)

var defaultValueMap = map[string]string{
	"webListen":            "",
	"webPort":              "5055",
	"webBasePath":          "/",
	"webCertFile":          "",
	"webKeyFile":           "",
	"sessionMaxAge":        "43200",
	"secret":               random.Seq(32),
	"timeLocation":         "UTC",
	"applicationUrl":       "",
	"mediaServerType":      "",
	"localLogin":           "true",
	"defaultPermissions":   strconv.Itoa(model.PermissionRequest),
	"plexMachineId":        "",
	"newPlexLogin":         "true",
	"jellyfinHost":         "",
	"jellyfinExternalHost": "",
	"jellyfinServerId":     "",
	"newJellyfinLogin":     "true",
}

// SettingService reads and writes the key/value configuration table. Values
// fall back to defaultValueMap when no row exists.
type SettingService struct{}

func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getBool(key string) (bool, error) {
	str, err := s.getString(key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(str)
}

func (s *SettingService) setBool(key string, value bool) error {
	return s.setString(key, strconv.FormatBool(value))
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.setString(key, strconv.Itoa(value))
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	return s.setInt("webPort", port)
}

func (s *SettingService) GetBasePath() (string, error) {
	basePath, err := s.getString("webBasePath")
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath, nil
}

func (s *SettingService) GetCertFile() (string, error) {
	return s.getString("webCertFile")
}

func (s *SettingService) GetKeyFile() (string, error) {
	return s.getString("webKeyFile")
}

// GetSessionMaxAge returns the session lifetime in minutes.
func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

// GetSecret returns the cookie-store signing secret. The generated default is
// persisted on first read so sessions survive a restart.
func (s *SettingService) GetSecret() (string, error) {
	secret, err := s.getString("secret")
	if secret == defaultValueMap["secret"] {
		if err := s.saveSetting("secret", secret); err != nil {
			logger.Warning("save secret failed:", err)
		}
	}
	return secret, err
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		return nil, err
	}
	return location, nil
}

func (s *SettingService) GetApplicationURL() (string, error) {
	url, err := s.getString("applicationUrl")
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(url, "/"), nil
}

func (s *SettingService) SetApplicationURL(url string) error {
	return s.setString("applicationUrl", url)
}

func (s *SettingService) GetMediaServerType() (string, error) {
	return s.getString("mediaServerType")
}

func (s *SettingService) SetMediaServerType(serverType string) error {
	return s.setString("mediaServerType", serverType)
}

// GetLocalLogin reports whether email/password sign-in is enabled.
func (s *SettingService) GetLocalLogin() (bool, error) {
	return s.getBool("localLogin")
}

func (s *SettingService) SetLocalLogin(value bool) error {
	return s.setBool("localLogin", value)
}

// GetDefaultPermissions returns the permission bitmask granted to
// auto-provisioned users.
func (s *SettingService) GetDefaultPermissions() (int, error) {
	return s.getInt("defaultPermissions")
}

func (s *SettingService) SetDefaultPermissions(permissions int) error {
	return s.setInt("defaultPermissions", permissions)
}

func (s *SettingService) GetPlexMachineID() (string, error) {
	return s.getString("plexMachineId")
}

func (s *SettingService) SetPlexMachineID(machineID string) error {
	return s.setString("plexMachineId", machineID)
}

// GetNewPlexLogin reports whether unknown Plex accounts with server access
// may be auto-provisioned.
func (s *SettingService) GetNewPlexLogin() (bool, error) {
	return s.getBool("newPlexLogin")
}

func (s *SettingService) SetNewPlexLogin(value bool) error {
	return s.setBool("newPlexLogin", value)
}

func (s *SettingService) GetJellyfinHost() (string, error) {
	host, err := s.getString("jellyfinHost")
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(host, "/"), nil
}

func (s *SettingService) SetJellyfinHost(host string) error {
	return s.setString("jellyfinHost", strings.TrimSuffix(host, "/"))
}

// GetJellyfinExternalHost returns the externally reachable hostname used for
// avatar URLs, when it differs from the connect hostname.
func (s *SettingService) GetJellyfinExternalHost() (string, error) {
	host, err := s.getString("jellyfinExternalHost")
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(host, "/"), nil
}

func (s *SettingService) SetJellyfinExternalHost(host string) error {
	return s.setString("jellyfinExternalHost", host)
}

func (s *SettingService) GetJellyfinServerID() (string, error) {
	return s.getString("jellyfinServerId")
}

func (s *SettingService) SetJellyfinServerID(serverID string) error {
	return s.setString("jellyfinServerId", serverID)
}

// GetNewJellyfinLogin reports whether accounts not yet imported may sign in.
func (s *SettingService) GetNewJellyfinLogin() (bool, error) {
	return s.getBool("newJellyfinLogin")
}

func (s *SettingService) SetNewJellyfinLogin(value bool) error {
	return s.setBool("newJellyfinLogin", value)
}

// GetAllSettings returns every persisted setting merged over the defaults.
func (s *SettingService) GetAllSettings() (map[string]string, error) {
	db := database.GetDB()
	settings := make([]*model.Setting, 0)
	err := db.Model(model.Setting{}).Find(&settings).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	all := make(map[string]string, len(defaultValueMap))
	for key, value := range defaultValueMap {
		all[key] = value
	}
	for _, setting := range settings {
		all[setting.Key] = setting.Value
	}
	return all, nil
}
