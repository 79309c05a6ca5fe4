// Package contracts holds recorded YouTube Data API v3 and Google OAuth
// responses. Tests check them against Google's published schema and feed
// them to the clients, so a change on either side shows up as a failure.
package contracts

// ChannelListContract answers channels.list?part=snippet,contentDetails&forHandle=@example.
const ChannelListContract = `{
  "kind": "youtube#channelListResponse",
  "etag": "sm9JXvX0nS4VEfzfnxb5yXjXv1E",
  "pageInfo": {"totalResults": 1, "resultsPerPage": 5},
  "items": [
    {
      "kind": "youtube#channel",
      "etag": "Qf9q3yS3Vb2xQ7tH3kq0uH9R1Ms",
      "id": "UCexampleexampleexample1",
      "snippet": {
        "title": "Example Channel",
        "description": "Videos about examples.",
        "customUrl": "@example",
        "publishedAt": "2015-03-02T18:21:07Z",
        "thumbnails": {"default": {"url": "https://yt3.ggpht.com/example=s88", "width": 88, "height": 88}},
        "localized": {"title": "Example Channel", "description": "Videos about examples."},
        "country": "US"
      },
      "contentDetails": {
        "relatedPlaylists": {"likes": "", "uploads": "UUexampleexampleexample1"}
      }
    }
  ]
}`

// PlaylistItemListContract answers playlistItems.list?part=snippet,contentDetails.
const PlaylistItemListContract = `{
  "kind": "youtube#playlistItemListResponse",
  "etag": "b1nGm0Zb0kY7q1fYB0mC1uQ8xkU",
  "nextPageToken": "EAAaBlBUOkNESQ",
  "pageInfo": {"totalResults": 2, "resultsPerPage": 50},
  "items": [
    {
      "kind": "youtube#playlistItem",
      "etag": "8m6x2N7hBz0oB3XhQn8s1bQb0eI",
      "id": "VVVleGFtcGxlLnZpZGVvMQ",
      "snippet": {
        "publishedAt": "2024-05-01T12:00:00Z",
        "channelId": "UCexampleexampleexample1",
        "title": "First video",
        "description": "The first one.",
        "thumbnails": {"default": {"url": "https://i.ytimg.com/vi/vid00000001/default.jpg", "width": 120, "height": 90}},
        "channelTitle": "Example Channel",
        "playlistId": "UUexampleexampleexample1",
        "position": 0,
        "resourceId": {"kind": "youtube#video", "videoId": "vid00000001"},
        "videoOwnerChannelTitle": "Example Channel",
        "videoOwnerChannelId": "UCexampleexampleexample1"
      },
      "contentDetails": {"videoId": "vid00000001", "videoPublishedAt": "2024-05-01T12:00:00Z"}
    },
    {
      "kind": "youtube#playlistItem",
      "etag": "r9d3a1nKz1xR0v4u8N2u7i2c3T0",
      "id": "VVVleGFtcGxlLnZpZGVvMg",
      "snippet": {
        "publishedAt": "2024-04-01T12:00:00Z",
        "channelId": "UCexampleexampleexample1",
        "title": "Second video",
        "description": "",
        "channelTitle": "Example Channel",
        "playlistId": "UUexampleexampleexample1",
        "position": 1,
        "resourceId": {"kind": "youtube#video", "videoId": "vid00000002"}
      },
      "contentDetails": {"videoId": "vid00000002", "videoPublishedAt": "2024-04-01T12:00:00Z"}
    }
  ]
}`

// CommentThreadListContract answers commentThreads.list?part=snippet,replies&textFormat=plainText.
// The thread has three replies of which the API inlined two.
const CommentThreadListContract = `{
  "kind": "youtube#commentThreadListResponse",
  "etag": "q0Jd8a4nB6n8s0r1p3c2v7k9l1E",
  "pageInfo": {"totalResults": 1, "resultsPerPage": 100},
  "items": [
    {
      "kind": "youtube#commentThread",
      "etag": "Yk4x9cD7b2nP0r3s5T1u8v6w2xA",
      "id": "UgzThread000000000000001",
      "snippet": {
        "channelId": "UCexampleexampleexample1",
        "videoId": "vid00000001",
        "topLevelComment": {
          "kind": "youtube#comment",
          "etag": "Hd8s2K0a9b1c7d6e5f4g3h2i1jA",
          "id": "UgzThread000000000000001",
          "snippet": {
            "channelId": "UCexampleexampleexample1",
            "videoId": "vid00000001",
            "textDisplay": "Great video &amp; thanks",
            "textOriginal": "Great video & thanks",
            "authorDisplayName": "@alice",
            "authorProfileImageUrl": "https://yt3.ggpht.com/alice=s48",
            "authorChannelUrl": "http://www.youtube.com/@alice",
            "authorChannelId": {"value": "UCalicealicealicealice01"},
            "canRate": true,
            "viewerRating": "none",
            "likeCount": 4,
            "publishedAt": "2024-05-02T08:00:00Z",
            "updatedAt": "2024-05-02T08:00:00Z"
          }
        },
        "canReply": true,
        "totalReplyCount": 3,
        "isPublic": true
      },
      "replies": {
        "comments": [
          {
            "kind": "youtube#comment",
            "etag": "Rp1a2b3c4d5e6f7g8h9i0jKlMnO",
            "id": "UgzThread000000000000001.reply0000001",
            "snippet": {
              "channelId": "UCexampleexampleexample1",
              "videoId": "vid00000001",
              "textDisplay": "Agreed",
              "textOriginal": "Agreed",
              "parentId": "UgzThread000000000000001",
              "authorDisplayName": "@bob",
              "authorChannelId": {"value": "UCbobbobbobbobbobbobbob01"},
              "canRate": true,
              "viewerRating": "none",
              "likeCount": 0,
              "publishedAt": "2024-05-02T09:00:00Z",
              "updatedAt": "2024-05-02T09:00:00Z"
            }
          },
          {
            "kind": "youtube#comment",
            "etag": "Rp2a2b3c4d5e6f7g8h9i0jKlMnO",
            "id": "UgzThread000000000000001.reply0000002",
            "snippet": {
              "channelId": "UCexampleexampleexample1",
              "videoId": "vid00000001",
              "textDisplay": "Same here",
              "textOriginal": "Same here",
              "parentId": "UgzThread000000000000001",
              "authorDisplayName": "@carol",
              "canRate": true,
              "viewerRating": "none",
              "likeCount": 1,
              "publishedAt": "2024-05-02T10:00:00Z",
              "updatedAt": "2024-05-02T10:00:00Z"
            }
          }
        ]
      }
    }
  ]
}`

// CommentListContract answers comments.list?part=snippet&parentId=UgzThread000000000000001.
const CommentListContract = `{
  "kind": "youtube#commentListResponse",
  "etag": "Cl9a8b7c6d5e4f3g2h1i0jKlMnO",
  "pageInfo": {"resultsPerPage": 100},
  "items": [
    {
      "kind": "youtube#comment",
      "etag": "Rp1a2b3c4d5e6f7g8h9i0jKlMnO",
      "id": "UgzThread000000000000001.reply0000001",
      "snippet": {
        "channelId": "UCexampleexampleexample1",
        "textDisplay": "Agreed",
        "textOriginal": "Agreed",
        "parentId": "UgzThread000000000000001",
        "authorDisplayName": "@bob",
        "canRate": true,
        "viewerRating": "none",
        "likeCount": 0,
        "publishedAt": "2024-05-02T09:00:00Z",
        "updatedAt": "2024-05-02T09:00:00Z"
      }
    },
    {
      "kind": "youtube#comment",
      "etag": "Rp3a2b3c4d5e6f7g8h9i0jKlMnO",
      "id": "UgzThread000000000000001.reply0000003",
      "snippet": {
        "channelId": "UCexampleexampleexample1",
        "textDisplay": "Late to the party",
        "textOriginal": "Late to the party",
        "parentId": "UgzThread000000000000001",
        "authorDisplayName": "@dave",
        "canRate": true,
        "viewerRating": "none",
        "likeCount": 0,
        "publishedAt": "2024-05-03T09:00:00Z",
        "updatedAt": "2024-05-03T09:00:00Z"
      }
    }
  ]
}`

// CommentsDisabledContract is the 403 commentThreads.list returns for a video
// with comments turned off.
const CommentsDisabledContract = `{
  "error": {
    "code": 403,
    "message": "The video identified by the <code><a href=\"/youtube/v3/docs/commentThreads/list#videoId\">videoId</a></code> parameter has disabled comments.",
    "errors": [
      {
        "message": "The video identified by the <code><a href=\"/youtube/v3/docs/commentThreads/list#videoId\">videoId</a></code> parameter has disabled comments.",
        "domain": "youtube.commentThread",
        "reason": "commentsDisabled",
        "location": "videoId",
        "locationType": "parameter"
      }
    ]
  }
}`

// QuotaExceededContract is the 403 any call returns once the daily quota is spent.
const QuotaExceededContract = `{
  "error": {
    "code": 403,
    "message": "The request cannot be completed because you have exceeded your <a href=\"/youtube/v3/getting-started#quota\">quota</a>.",
    "errors": [
      {
        "message": "The request cannot be completed because you have exceeded your <a href=\"/youtube/v3/getting-started#quota\">quota</a>.",
        "domain": "youtube.quota",
        "reason": "quotaExceeded"
      }
    ]
  }
}`

// TokenContract answers the authorization code exchange at oauth2.googleapis.com/token.
const TokenContract = `{
  "access_token": "ya29.a0AfB_byExampleAccessToken",
  "expires_in": 3599,
  "refresh_token": "1//0gExampleRefreshToken",
  "scope": "https://www.googleapis.com/auth/youtube.readonly https://www.googleapis.com/auth/youtube.force-ssl",
  "token_type": "Bearer"
}`
