package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	"go.uber.org/zap"

	"github.com/paws-sec/paws/internal/models"
)

// collectIAM gathers users, the password policy, and root account flags.
// A ListUsers failure is recorded in IAMData.Error; the password policy and
// account summary are still attempted.
func collectIAM(ctx context.Context, client iamAPIClient, log *zap.Logger) *models.IAMData {
	data := &models.IAMData{}

	users, err := collectIAMUsers(ctx, client, log)
	if err != nil {
		log.Warn("iam user listing failed", zap.Error(err))
		data.Error = err.Error()
	}
	data.Users = users

	data.PasswordPolicy = collectPasswordPolicy(ctx, client, log)

	root, err := collectRootAccountInfo(ctx, client)
	if err != nil {
		log.Warn("iam account summary failed", zap.Error(err))
	}
	data.Root = root

	return data
}

// collectIAMUsers returns every IAM user together with MFA, console login,
// and access key metadata. The ListUsers paginator handles large accounts.
func collectIAMUsers(ctx context.Context, client iamAPIClient, log *zap.Logger) ([]models.IAMUser, error) {
	paginator := iamsvc.NewListUsersPaginator(client, &iamsvc.ListUsersInput{})
	var users []models.IAMUser
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return users, fmt.Errorf("list IAM users: %w", err)
		}
		for _, u := range page.Users {
			userName := aws.ToString(u.UserName)
			user := models.IAMUser{
				UserName:        userName,
				HasLoginProfile: userHasLoginProfile(ctx, client, userName),
				AccessKeys:      userAccessKeys(ctx, client, userName, log),
			}
			mfa, err := userHasMFA(ctx, client, userName)
			if err != nil {
				log.Warn("list mfa devices failed", zap.String("user", userName), zap.Error(err))
				user.MFAUnknown = true
			}
			user.MFAEnabled = mfa
			users = append(users, user)
		}
	}
	return users, nil
}

// userHasMFA returns true when the user has at least one MFA device.
func userHasMFA(ctx context.Context, client iamAPIClient, userName string) (bool, error) {
	out, err := client.ListMFADevices(ctx, &iamsvc.ListMFADevicesInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return false, fmt.Errorf("list MFA devices for %s: %w", userName, err)
	}
	return len(out.MFADevices) > 0, nil
}

// userHasLoginProfile returns true when the user has a console password.
// GetLoginProfile fails with NoSuchEntity when there is none.
func userHasLoginProfile(ctx context.Context, client iamAPIClient, userName string) bool {
	_, err := client.GetLoginProfile(ctx, &iamsvc.GetLoginProfileInput{
		UserName: aws.String(userName),
	})
	return err == nil
}

func userAccessKeys(ctx context.Context, client iamAPIClient, userName string, log *zap.Logger) []models.IAMAccessKey {
	out, err := client.ListAccessKeys(ctx, &iamsvc.ListAccessKeysInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		log.Debug("list access keys failed", zap.String("user", userName), zap.Error(err))
		return nil
	}

	keys := make([]models.IAMAccessKey, 0, len(out.AccessKeyMetadata))
	for _, k := range out.AccessKeyMetadata {
		keys = append(keys, models.IAMAccessKey{
			AccessKeyID: aws.ToString(k.AccessKeyId),
			Status:      string(k.Status),
			CreatedAt:   aws.ToTime(k.CreateDate),
		})
	}
	return keys
}

// collectPasswordPolicy distinguishes "no policy" (NoSuchEntity) from a
// lookup failure, which leaves Known false.
func collectPasswordPolicy(ctx context.Context, client iamAPIClient, log *zap.Logger) models.PasswordPolicyStatus {
	out, err := client.GetAccountPasswordPolicy(ctx, &iamsvc.GetAccountPasswordPolicyInput{})
	if err != nil {
		if apiErrorCode(err) == "NoSuchEntity" {
			return models.PasswordPolicyStatus{Known: true}
		}
		log.Warn("get account password policy failed", zap.Error(err))
		return models.PasswordPolicyStatus{}
	}

	status := models.PasswordPolicyStatus{Known: true, Configured: true}
	if p := out.PasswordPolicy; p != nil {
		status.MinimumLength = aws.ToInt32(p.MinimumPasswordLength)
		status.RequireSymbols = p.RequireSymbols
		status.RequireNumbers = p.RequireNumbers
		status.MaxPasswordAgeDay = aws.ToInt32(p.MaxPasswordAge)
	}
	return status
}

// collectRootAccountInfo reads the IAM account summary.
// AccountAccessKeysPresent counts root access keys; AccountMFAEnabled is 1
// when root has MFA. DataAvailable is set only on success so rules can tell
// a failed lookup from a real "disabled".
func collectRootAccountInfo(ctx context.Context, client iamAPIClient) (models.RootAccountInfo, error) {
	out, err := client.GetAccountSummary(ctx, &iamsvc.GetAccountSummaryInput{})
	if err != nil {
		return models.RootAccountInfo{}, fmt.Errorf("get IAM account summary: %w", err)
	}
	return models.RootAccountInfo{
		HasAccessKeys: out.SummaryMap["AccountAccessKeysPresent"] > 0,
		MFAEnabled:    out.SummaryMap["AccountMFAEnabled"] > 0,
		DataAvailable: true,
	}, nil
}
